package agent

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// ObjectSchema builds the parameter schema of a tool declaration.
func ObjectSchema(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// StringProp declares a string parameter.
func StringProp(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

// IntProp declares an integer parameter.
func IntProp(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: desc}
}

// StringArrayProp declares a string array parameter.
func StringArrayProp(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: desc,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

// Payload converts a struct into the map shape tool results must have.
func Payload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal failed: %w", err)
	}

	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
	}

	return out, nil
}

// ListPayload wraps a slice into an items/count tool result.
func ListPayload[T any](items []T) (map[string]any, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal failed: %w", err)
	}

	var list []any
	if len(items) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
		}
	}

	return map[string]any{"items": list, "count": len(items)}, nil
}
