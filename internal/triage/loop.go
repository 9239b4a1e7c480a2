// Package triage runs the top of the system: the watchdog that waits for
// unread mail, the per-pass safety gate, the structural processed marker
// and the manager agent that works through the batch.
package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hal9000y/mail-copilot/internal/agent"
	"github.com/hal9000y/mail-copilot/internal/mailbox"
	"github.com/hal9000y/mail-copilot/internal/observability"
)

// ErrSafetyStop marks a pass refused by the run-rate brake.
var ErrSafetyStop = errors.New("safety limits reached")

// Mailbox is the mailbox surface the loop itself needs. The manager agent
// gets the full tool set separately.
type Mailbox interface {
	ListUnread(ctx context.Context, limit int64, account string) ([]mailbox.ItemSummary, error)
	ApplyLabel(ctx context.Context, messageID, labelName, account string) error
	UnreadCount(ctx context.Context, account string) int
	ProcessedLabel() string
}

// Safety gates pass frequency.
type Safety interface {
	CheckLimits() (bool, string)
	RecordRun() error
}

// Runner executes the manager agent.
type Runner interface {
	Run(ctx context.Context, def agent.Definition, prompt string) ([]agent.Event, error)
}

// Narrator receives the pass narrative.
type Narrator interface {
	PassStart(unread int)
	PassSkipped()
	PassDone(report string)
	SafetyStop(reason string)
	AgentEvent(agentName string, ev agent.Event)
}

// Builder constructs the manager definition per pass, so instruction edits
// apply without a restart.
type Builder func() (agent.Definition, error)

// Loop drives triage passes over all configured account profiles.
type Loop struct {
	mail     Mailbox
	safety   Safety
	runner   Runner
	manager  Builder
	narrator Narrator
	profiles []string
	limit    int64
}

// NewLoop creates a Loop. limit caps how many unread messages one pass
// takes on per profile.
func NewLoop(mail Mailbox, safety Safety, runner Runner, manager Builder, narrator Narrator, profiles []string, limit int64) *Loop {
	return &Loop{
		mail:     mail,
		safety:   safety,
		runner:   runner,
		manager:  manager,
		narrator: narrator,
		profiles: profiles,
		limit:    limit,
	}
}

// RunOnce executes one triage pass. The batch is marked processed before
// the manager sees it, so a crashed or wedged pass can never make the same
// mail trigger again. Returns ErrSafetyStop when the run-rate brake
// refuses the pass.
func (l *Loop) RunOnce(ctx context.Context) error {
	if ok, reason := l.safety.CheckLimits(); !ok {
		l.narrator.SafetyStop(reason)
		return fmt.Errorf("%w: %s", ErrSafetyStop, reason)
	}

	batch := l.collectBatch(ctx)
	if len(batch) == 0 {
		l.narrator.PassSkipped()
		return nil
	}

	l.narrator.PassStart(len(batch))

	if err := l.safety.RecordRun(); err != nil {
		observability.Logger().Warn("recording run failed", "error", err)
	}

	l.markProcessed(ctx, batch)

	def, err := l.manager()
	if err != nil {
		return fmt.Errorf("building manager failed: %w", err)
	}

	events, err := l.runner.Run(ctx, def, batchDirective(batch, l.mail.ProcessedLabel()))
	for _, ev := range events {
		l.narrator.AgentEvent(def.Name, ev)
	}
	if err != nil {
		return fmt.Errorf("triage pass failed: %w", err)
	}

	l.narrator.PassDone(agent.Reduce(events).Summary)

	return nil
}

// Watch polls for qualifying unread mail and triages when some appears.
// Pass failures, safety stops included, are logged and never end the
// watch; the budget frees up over time. Returns when ctx is cancelled.
func (l *Loop) Watch(ctx context.Context, interval time.Duration) error {
	log := observability.Logger()
	log.Info("watching for unread mail", "interval", interval.String(), "profiles", l.profiles)

	for {
		if l.unreadAnywhere(ctx) {
			if err := l.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("triage pass failed, continuing watch", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

func (l *Loop) collectBatch(ctx context.Context) []mailbox.ItemSummary {
	var batch []mailbox.ItemSummary
	for _, profile := range l.profiles {
		items, err := l.mail.ListUnread(ctx, l.limit, profile)
		if err != nil {
			observability.Logger().Warn("listing unread failed", "account", profile, "error", err)
			continue
		}
		batch = append(batch, items...)
	}
	return batch
}

// markProcessed applies the marker to the whole batch up front. Applying
// it structurally, instead of trusting the agent to do it, is what makes
// the loop safe against a manager that stalls or forgets.
func (l *Loop) markProcessed(ctx context.Context, batch []mailbox.ItemSummary) {
	label := l.mail.ProcessedLabel()
	for _, item := range batch {
		if err := l.mail.ApplyLabel(ctx, item.MessageID, label, item.Account); err != nil {
			observability.Logger().Warn("marking message failed",
				"account", item.Account, "message_id", item.MessageID, "error", err)
		}
	}
}

func (l *Loop) unreadAnywhere(ctx context.Context) bool {
	for _, profile := range l.profiles {
		if l.mail.UnreadCount(ctx, profile) > 0 {
			return true
		}
	}
	return false
}

// batchDirective is the manager's assignment: the batch listing plus the
// ground rules of a pass.
func batchDirective(batch []mailbox.ItemSummary, processedLabel string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Triage the following %d unread message(s). ", len(batch))
	fmt.Fprintf(&b, "They already carry the %q label, do not re-apply it. ", processedLabel)
	b.WriteString("For each message: read it in full if the snippet is not enough, " +
		"delegate research, radio, calendar or web questions to your specialists, " +
		"draft replies where a reply is clearly useful, and finish with a short report " +
		"of what you did per message.\n")

	for i, item := range batch {
		fmt.Fprintf(&b, "\n%d. [%s] message_id=%s from=%s subject=%q date=%s\n   %s\n",
			i+1, item.Account, item.MessageID, item.From, item.Subject, item.Date, item.Snippet)
	}

	return b.String()
}
