package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

func TestReduce(t *testing.T) {
	cases := []struct {
		name     string
		events   []agent.Event
		expected agent.RunResult
	}{
		{
			name:     "empty_stream",
			events:   nil,
			expected: agent.RunResult{Summary: agent.NoReport},
		},
		{
			name: "only_thoughts",
			events: []agent.Event{
				agent.NewThought("considering options"),
				agent.NewThought("still considering"),
			},
			expected: agent.RunResult{Summary: agent.NoReport},
		},
		{
			name: "tools_but_no_text",
			events: []agent.Event{
				agent.NewToolCall("gmail_search", map[string]any{"query": "waffles"}),
				agent.NewToolResult("gmail_search", `{"items":[]}`),
				agent.NewToolCall("gmail_get_thread", map[string]any{"message_id": "m-1"}),
			},
			expected: agent.RunResult{
				Summary:   "The agent ran gmail_search, gmail_get_thread but produced no written report.",
				ToolsUsed: []string{"gmail_search", "gmail_get_thread"},
			},
		},
		{
			name: "last_nonempty_text_wins",
			events: []agent.Event{
				agent.NewText("intermediate note"),
				agent.NewToolCall("calendar_create_event", map[string]any{"summary": "Lunch"}),
				agent.NewText("Booked lunch for tomorrow at noon."),
				agent.NewText("   "),
			},
			expected: agent.RunResult{
				Summary:   "Booked lunch for tomorrow at noon.",
				ToolsUsed: []string{"calendar_create_event"},
			},
		},
		{
			name: "repeated_tool_reported_once",
			events: []agent.Event{
				agent.NewToolCall("search_programs", nil),
				agent.NewToolCall("search_programs", nil),
			},
			expected: agent.RunResult{
				Summary:   "The agent ran search_programs but produced no written report.",
				ToolsUsed: []string{"search_programs"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, agent.Reduce(tc.events))
		})
	}
}
