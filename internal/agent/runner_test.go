package agent_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

type generatorMock struct {
	responses []*genai.GenerateContentResponse
	err       error
	calls     int
	contents  [][]*genai.Content
}

func (g *generatorMock) GenerateContent(
	_ context.Context,
	_ string,
	contents []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	g.contents = append(g.contents, contents)
	if g.err != nil {
		return nil, g.err
	}
	if g.calls >= len(g.responses) {
		return nil, fmt.Errorf("unexpected call %d", g.calls)
	}
	resp := g.responses[g.calls]
	g.calls++
	return resp, nil
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
	}
}

type echoTool struct {
	name string
	out  map[string]any
	err  error
	got  map[string]any
}

func (e *echoTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{Name: e.name}
}

func (e *echoTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	e.got = args
	return e.out, e.err
}

func TestRunnerToolLoop(t *testing.T) {
	tool := &echoTool{name: "gmail_search", out: map[string]any{"count": 2}}
	gen := &generatorMock{responses: []*genai.GenerateContentResponse{
		textResponse(
			&genai.Part{Text: "deciding what to search for", Thought: true},
			&genai.Part{FunctionCall: &genai.FunctionCall{
				Name: "gmail_search",
				Args: map[string]any{"query": "from:anna"},
			}},
		),
		textResponse(&genai.Part{Text: "Found two matching mails."}),
	}}

	events, err := agent.NewRunner(gen).Run(context.Background(), agent.Definition{
		Name:  "researcher",
		Model: "gemini-flash-latest",
		Tools: []agent.Tool{tool},
	}, "find mail from Anna")
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, agent.KindThought, events[0].Kind)
	assert.Equal(t, agent.KindToolCall, events[1].Kind)
	assert.Equal(t, "gmail_search", events[1].Call.Name)
	assert.Equal(t, agent.KindToolResult, events[2].Kind)
	assert.JSONEq(t, `{"count":2}`, events[2].Result.Output)
	assert.Equal(t, agent.KindText, events[3].Kind)

	assert.Equal(t, map[string]any{"query": "from:anna"}, tool.got)

	res := agent.Reduce(events)
	assert.Equal(t, "Found two matching mails.", res.Summary)
	assert.Equal(t, []string{"gmail_search"}, res.ToolsUsed)
}

func TestRunnerContainsToolErrors(t *testing.T) {
	tool := &echoTool{name: "calendar_create_event", err: errors.New("network unreachable")}
	gen := &generatorMock{responses: []*genai.GenerateContentResponse{
		textResponse(&genai.Part{FunctionCall: &genai.FunctionCall{Name: "calendar_create_event"}}),
		textResponse(&genai.Part{Text: "Could not book, the calendar was unreachable."}),
	}}

	events, err := agent.NewRunner(gen).Run(context.Background(), agent.Definition{
		Name:  "secretary",
		Tools: []agent.Tool{tool},
	}, "book lunch")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.JSONEq(t, `{"error":"network unreachable"}`, events[1].Result.Output)
	assert.Equal(t, "Could not book, the calendar was unreachable.", agent.Reduce(events).Summary)
}

func TestRunnerUnknownTool(t *testing.T) {
	gen := &generatorMock{responses: []*genai.GenerateContentResponse{
		textResponse(&genai.Part{FunctionCall: &genai.FunctionCall{Name: "nope"}}),
		textResponse(&genai.Part{Text: "done"}),
	}}

	events, err := agent.NewRunner(gen).Run(context.Background(), agent.Definition{Name: "x"}, "go")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.JSONEq(t, `{"error":"unknown tool: nope"}`, events[1].Result.Output)
}

func TestRunnerModelFailure(t *testing.T) {
	gen := &generatorMock{err: errors.New("quota exceeded")}

	events, err := agent.NewRunner(gen).Run(context.Background(), agent.Definition{Name: "x"}, "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, events)
}
