// Package agent defines the agent execution contract: tool capabilities,
// the function-calling runner, and the closed event stream it produces.
package agent

import (
	"fmt"
	"strings"
)

// Kind discriminates the closed set of event variants.
type Kind int

const (
	// KindThought is an internal deliberation fragment.
	KindThought Kind = iota
	// KindToolCall records a tool invocation request.
	KindToolCall
	// KindToolResult records a tool's output.
	KindToolResult
	// KindText is a model text fragment addressed to the caller.
	KindText
)

// ToolCall is a tool invocation with its argument mapping.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult is the serialized output of one tool invocation.
type ToolResult struct {
	Name   string
	Output string
}

// Event is one element of an agent run's event stream. Exactly one of the
// payload fields is populated, selected by Kind.
type Event struct {
	Kind    Kind
	Thought string
	Call    ToolCall
	Result  ToolResult
	Text    string
}

// NewThought wraps a deliberation fragment.
func NewThought(text string) Event {
	return Event{Kind: KindThought, Thought: text}
}

// NewToolCall wraps a tool invocation record.
func NewToolCall(name string, args map[string]any) Event {
	return Event{Kind: KindToolCall, Call: ToolCall{Name: name, Args: args}}
}

// NewToolResult wraps a tool output record.
func NewToolResult(name, output string) Event {
	return Event{Kind: KindToolResult, Result: ToolResult{Name: name, Output: output}}
}

// NewText wraps a model text fragment.
func NewText(text string) Event {
	return Event{Kind: KindText, Text: text}
}

// NoReport is returned when a run produced neither text nor tool calls.
const NoReport = "No report."

// RunResult is the reduction of an event stream to one textual outcome.
type RunResult struct {
	Summary   string
	ToolsUsed []string
}

// Reduce collapses an event stream into a RunResult. The summary is the
// last non-empty text fragment (the synthesis after tool use). A run that
// used tools but never spoke gets a fallback naming the tools; a silent
// run without tools yields NoReport.
func Reduce(events []Event) RunResult {
	var (
		lastText string
		tools    []string
		seen     = map[string]bool{}
	)

	for _, e := range events {
		switch e.Kind {
		case KindText:
			if t := strings.TrimSpace(e.Text); t != "" {
				lastText = t
			}
		case KindToolCall:
			if !seen[e.Call.Name] {
				seen[e.Call.Name] = true
				tools = append(tools, e.Call.Name)
			}
		}
	}

	res := RunResult{ToolsUsed: tools}

	switch {
	case lastText != "":
		res.Summary = lastText
	case len(tools) > 0:
		res.Summary = fmt.Sprintf("The agent ran %s but produced no written report.", strings.Join(tools, ", "))
	default:
		res.Summary = NoReport
	}

	return res
}
