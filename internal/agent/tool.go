package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Tool is one callable capability exposed to an agent. Call returns a plain
// result map; errors are contained by the runner and never surface into the
// model as exceptions.
type Tool interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Decode unmarshals a tool argument mapping into a typed struct, avoiding
// unsafe type assertions on the raw map.
func Decode[T any](args map[string]any) (T, error) {
	var result T

	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}

	return result, nil
}

// Func adapts a declaration plus a closure into a Tool.
type Func struct {
	Decl    *genai.FunctionDeclaration
	Handler func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Declaration returns the function declaration advertised to the model.
func (f Func) Declaration() *genai.FunctionDeclaration {
	return f.Decl
}

// Call invokes the handler.
func (f Func) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	return f.Handler(ctx, args)
}
