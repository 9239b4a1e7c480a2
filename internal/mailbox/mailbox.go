package mailbox

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

// Service is the Gmail call surface the adapter consumes.
type Service interface {
	ListMessages(ctx context.Context, profile, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, profile, msgID string) (*gmail.Message, error)
	GetMessage(ctx context.Context, profile, msgID string) (*gmail.Message, error)
	GetThread(ctx context.Context, profile, threadID string) (*gmail.Thread, error)
	ListLabels(ctx context.Context, profile string) (*gmail.ListLabelsResponse, error)
	CreateLabel(ctx context.Context, profile, name string) (*gmail.Label, error)
	ModifyMessage(ctx context.Context, profile, msgID string, addLabelIDs []string) (*gmail.Message, error)
	ListDrafts(ctx context.Context, profile string) (*gmail.ListDraftsResponse, error)
	CreateDraft(ctx context.Context, profile string, draft *gmail.Draft) (*gmail.Draft, error)
}

const defaultSnippetLength = 100

// Adapter exposes the mailbox operations used by the triage loop and the
// agents. One Adapter serves all configured account profiles.
type Adapter struct {
	svc            Service
	profiles       []string
	processedLabel string
	recencyDays    int

	mu         sync.Mutex
	labelCache map[string]string
}

// NewAdapter creates an Adapter over the given profiles. processedLabel is
// the durable idempotence marker; recencyDays bounds how old an unread
// message may be to qualify for triage.
func NewAdapter(svc Service, profiles []string, processedLabel string, recencyDays int) *Adapter {
	return &Adapter{
		svc:            svc,
		profiles:       profiles,
		processedLabel: processedLabel,
		recencyDays:    recencyDays,
		labelCache:     make(map[string]string),
	}
}

// ProcessedLabel returns the marker label name.
func (a *Adapter) ProcessedLabel() string {
	return a.processedLabel
}

// ListUnread returns up to limit unread messages that do not carry the
// processed marker and are within the recency window.
func (a *Adapter) ListUnread(ctx context.Context, limit int64, account string) ([]ItemSummary, error) {
	resp, err := a.svc.ListMessages(ctx, account, UnreadQuery(a.processedLabel, a.recencyDays), limit)
	if err != nil {
		return nil, fmt.Errorf("svc.ListMessages failed: %w", err)
	}

	items := make([]ItemSummary, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := a.svc.GetMessageMetadata(ctx, account, ref.Id)
		if err != nil {
			return nil, fmt.Errorf("get message %s failed: %w", ref.Id, err)
		}
		items = append(items, summarize(msg, account, 0))
	}

	return items, nil
}

// UnreadCount is the watchdog's cheap probe: a single-result listing under
// the same qualifying filter. Probe errors are logged and reported as zero
// so the watchdog keeps polling.
func (a *Adapter) UnreadCount(ctx context.Context, account string) int {
	resp, err := a.svc.ListMessages(ctx, account, UnreadQuery(a.processedLabel, a.recencyDays), 1)
	if err != nil {
		observability.Logger().Warn("unread probe failed", "account", account, "error", err)
		return 0
	}

	return len(resp.Messages)
}

// Search runs a Gmail query across the requested profiles. Unknown profiles
// are skipped and per-profile failures are logged and tolerated so one
// broken account never empties the whole result.
func (a *Adapter) Search(ctx context.Context, query string, limit int64, snippetLen int, accounts []string) []ItemSummary {
	if limit <= 0 {
		limit = 5
	}
	if snippetLen <= 0 {
		snippetLen = defaultSnippetLength
	}
	if len(accounts) == 0 {
		accounts = a.profiles
	}

	var items []ItemSummary
	for _, account := range accounts {
		if !slices.Contains(a.profiles, account) {
			continue
		}

		resp, err := a.svc.ListMessages(ctx, account, query, limit)
		if err != nil {
			observability.Logger().Warn("search failed", "account", account, "error", err)
			continue
		}

		for _, ref := range resp.Messages {
			msg, err := a.svc.GetMessageMetadata(ctx, account, ref.Id)
			if err != nil {
				observability.Logger().Warn("get message failed",
					"account", account, "message_id", ref.Id, "error", err)
				continue
			}
			items = append(items, summarize(msg, account, snippetLen))
		}
	}

	return items
}

// FindRelated searches all profiles for mails sharing the message's subject,
// with reply/forward prefixes stripped.
func (a *Adapter) FindRelated(ctx context.Context, messageID, account string) ([]ItemSummary, error) {
	msg, err := a.svc.GetMessageMetadata(ctx, account, messageID)
	if err != nil {
		return nil, fmt.Errorf("get message %s failed: %w", messageID, err)
	}

	subject := cleanSubject(headersMap(msg.Payload)["Subject"])
	if subject == "" {
		return nil, nil
	}

	return a.Search(ctx, fmt.Sprintf("subject:%q", subject), 10, defaultSnippetLength, a.profiles), nil
}
