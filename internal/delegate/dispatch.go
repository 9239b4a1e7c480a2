// Package delegate hands tasks from the manager to specialist agents and
// reduces each run to a single textual report. Specialist failures never
// propagate as errors: the manager receives a report saying what went
// wrong and triages on.
package delegate

import (
	"context"
	"fmt"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

// Kind selects a specialist.
type Kind string

const (
	// KindResearch digs through mailboxes to answer questions about mail.
	KindResearch Kind = "research"
	// KindEntertainment answers radio and podcast questions from the
	// public catalog.
	KindEntertainment Kind = "entertainment"
	// KindBooking reads calendars and books events.
	KindBooking Kind = "booking"
	// KindGroundedSearch answers open web questions with search grounding.
	KindGroundedSearch Kind = "grounded_search"
)

// Task is one delegated assignment. EmailContext carries the mail excerpt
// the question refers to.
type Task struct {
	Query        string
	EmailContext string
}

// Builder constructs a specialist definition on demand, so instruction
// files are re-read per delegation.
type Builder func() (agent.Definition, error)

// Runner executes agent definitions.
type Runner interface {
	Run(ctx context.Context, def agent.Definition, prompt string) ([]agent.Event, error)
}

// WebSearcher answers grounded web queries.
type WebSearcher interface {
	Search(ctx context.Context, query, emailContext string) (string, error)
}

// Narrator receives the delegation narrative.
type Narrator interface {
	DelegationStart(agentName, query string)
	AgentEvent(agentName string, ev agent.Event)
	DelegationDone(agentName, summary string)
}

type nopNarrator struct{}

func (nopNarrator) DelegationStart(string, string) {}
func (nopNarrator) AgentEvent(string, agent.Event) {}
func (nopNarrator) DelegationDone(string, string)  {}

// Dispatcher routes tasks to specialists.
type Dispatcher struct {
	runner   Runner
	searcher WebSearcher
	builders map[Kind]Builder
	narrator Narrator
}

// NewDispatcher creates a Dispatcher. narrator may be nil.
func NewDispatcher(runner Runner, searcher WebSearcher, builders map[Kind]Builder, narrator Narrator) *Dispatcher {
	if narrator == nil {
		narrator = nopNarrator{}
	}

	return &Dispatcher{runner: runner, searcher: searcher, builders: builders, narrator: narrator}
}

// Dispatch runs one delegated task to completion and returns the
// specialist's report. Every failure mode, including panics in specialist
// construction, comes back as a report string.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, task Task) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = fmt.Sprintf("Delegation to %s failed: %v", kind, r)
		}
	}()

	d.narrator.DelegationStart(string(kind), task.Query)

	if kind == KindGroundedSearch {
		summary = d.groundedSearch(ctx, task)
		d.narrator.DelegationDone(string(kind), summary)
		return summary
	}

	builder, ok := d.builders[kind]
	if !ok {
		return fmt.Sprintf("Delegation to %s failed: no such specialist", kind)
	}

	def, err := builder()
	if err != nil {
		return fmt.Sprintf("Delegation to %s failed: %v", kind, err)
	}

	events, err := d.runner.Run(ctx, def, taskPrompt(task))
	for _, ev := range events {
		d.narrator.AgentEvent(def.Name, ev)
	}
	if err != nil {
		return fmt.Sprintf("Delegation to %s failed: %v", def.Name, err)
	}

	summary = agent.Reduce(events).Summary
	d.narrator.DelegationDone(def.Name, summary)

	return summary
}

// groundedSearch bypasses the agent loop: grounding happens inside one
// model call, there is nothing to iterate.
func (d *Dispatcher) groundedSearch(ctx context.Context, task Task) string {
	answer, err := d.searcher.Search(ctx, task.Query, task.EmailContext)
	if err != nil {
		return fmt.Sprintf("Delegation to %s failed: %v", KindGroundedSearch, err)
	}
	return answer
}

func taskPrompt(task Task) string {
	if task.EmailContext == "" {
		return task.Query
	}
	return fmt.Sprintf("Context from the mail being triaged:\n%s\n\nAssignment: %s", task.EmailContext, task.Query)
}
