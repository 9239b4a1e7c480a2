// Package story renders the triage run as a readable narrative on stdout,
// so a human can follow what the agents saw, thought and did. Structured
// logs go to stderr; this is the human channel.
package story

import (
	"fmt"
	"io"
	"strings"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

const previewLen = 160

// Narrator writes the run narrative. With quiet set only pass-level lines
// are printed, agent chatter is suppressed.
type Narrator struct {
	w     io.Writer
	quiet bool
}

// NewNarrator creates a Narrator writing to w.
func NewNarrator(w io.Writer, quiet bool) *Narrator {
	return &Narrator{w: w, quiet: quiet}
}

// PassStart announces one triage pass over a batch of unread mail.
func (n *Narrator) PassStart(unread int) {
	n.printf("=== triage pass: %d unread message(s) ===\n", unread)
}

// PassSkipped reports a pass that did not run because nothing qualified.
func (n *Narrator) PassSkipped() {
	n.printf("=== nothing to triage ===\n")
}

// PassDone closes a pass with the manager's final report.
func (n *Narrator) PassDone(report string) {
	n.printf("=== pass complete ===\n%s\n", strings.TrimSpace(report))
}

// SafetyStop reports a pass refused by the run-rate brake.
func (n *Narrator) SafetyStop(reason string) {
	n.printf("=== stopped by safety monitor: %s ===\n", reason)
}

// DelegationStart announces a handoff to a specialist.
func (n *Narrator) DelegationStart(agentName, query string) {
	if n.quiet {
		return
	}
	n.printf("[%s] <= %s\n", agentName, preview(query))
}

// AgentEvent renders one event of an agent run.
func (n *Narrator) AgentEvent(agentName string, ev agent.Event) {
	if n.quiet {
		return
	}

	switch ev.Kind {
	case agent.KindThought:
		n.printf("[%s] thinking: %s\n", agentName, preview(ev.Thought))
	case agent.KindToolCall:
		n.printf("[%s] -> %s(%s)\n", agentName, ev.Call.Name, preview(formatArgs(ev.Call.Args)))
	case agent.KindToolResult:
		n.printf("[%s] <- %s: %s\n", agentName, ev.Result.Name, preview(ev.Result.Output))
	case agent.KindText:
		n.printf("[%s] %s\n", agentName, preview(ev.Text))
	}
}

// DelegationDone reports the specialist's reduced answer.
func (n *Narrator) DelegationDone(agentName, summary string) {
	if n.quiet {
		return
	}
	n.printf("[%s] => %s\n", agentName, preview(summary))
}

func (n *Narrator) printf(format string, args ...any) {
	fmt.Fprintf(n.w, format, args...)
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}

	parts := make([]string, 0, len(args))
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

// preview flattens text to one truncated line.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}
