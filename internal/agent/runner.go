package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Definition is a specialist configuration bundle: model, instruction,
// sampling temperature, thinking budget and the bounded tool set. Variants
// differ only in configuration, never in code path.
type Definition struct {
	Name           string
	Model          string
	Instruction    string
	Temperature    float32
	ThinkingBudget int32
	Tools          []Tool
}

// Generator is the LLM call surface; *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

const defaultMaxTurns = 16

// Runner executes agent definitions to completion: a sequential
// function-calling loop that feeds tool outputs back to the model until it
// stops requesting tools or the turn budget runs out.
type Runner struct {
	gen      Generator
	maxTurns int
}

// NewRunner creates a Runner on top of a Generator.
func NewRunner(gen Generator) *Runner {
	return &Runner{gen: gen, maxTurns: defaultMaxTurns}
}

// Run executes one isolated agent run and returns its ordered event stream.
// Tool failures are contained as error payloads fed back to the model; only
// model-call failures surface as an error, alongside the events produced so
// far.
func (r *Runner) Run(ctx context.Context, def Definition, prompt string) ([]Event, error) {
	toolIndex := make(map[string]Tool, len(def.Tools))
	decls := make([]*genai.FunctionDeclaration, 0, len(def.Tools))
	for _, t := range def.Tools {
		d := t.Declaration()
		toolIndex[d.Name] = t
		decls = append(decls, d)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(def.Temperature),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: def.Instruction}}},
	}
	if def.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(def.ThinkingBudget),
		}
	}
	if len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	var events []Event
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	for turn := 0; turn < r.maxTurns; turn++ {
		resp, err := r.gen.GenerateContent(ctx, def.Model, contents, cfg)
		if err != nil {
			return events, fmt.Errorf("gen.GenerateContent failed: %w", err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return events, nil
		}

		content := resp.Candidates[0].Content
		contents = append(contents, content)

		var calls []*genai.FunctionCall
		for _, part := range content.Parts {
			switch {
			case part.Thought && part.Text != "":
				events = append(events, NewThought(part.Text))
			case part.Text != "":
				events = append(events, NewText(part.Text))
			}
			if part.FunctionCall != nil {
				calls = append(calls, part.FunctionCall)
				events = append(events, NewToolCall(part.FunctionCall.Name, part.FunctionCall.Args))
			}
		}

		if len(calls) == 0 {
			return events, nil
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			out := r.invoke(ctx, toolIndex, call)
			events = append(events, NewToolResult(call.Name, compactJSON(out)))
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, out))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return events, nil
}

func (r *Runner) invoke(ctx context.Context, tools map[string]Tool, call *genai.FunctionCall) map[string]any {
	t, ok := tools[call.Name]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
	}

	out, err := t.Call(ctx, call.Args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	if out == nil {
		out = map[string]any{}
	}

	return out
}

func compactJSON(v map[string]any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
