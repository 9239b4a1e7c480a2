// Package mailbox wraps Gmail as the copilot's mailbox adapter: loop-safe
// unread listing, cross-profile search, thread reading, the processed
// marker and draft replies.
package mailbox

import (
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// ItemSummary is light envelope metadata for one message, tagged with the
// account profile it came from.
type ItemSummary struct {
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	Account   string `json:"account"`
}

func headersMap(payload *gmail.MessagePart) map[string]string {
	headers := map[string]string{}
	if payload == nil {
		return headers
	}
	for _, h := range payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

func summarize(msg *gmail.Message, account string, snippetLen int) ItemSummary {
	h := headersMap(msg.Payload)

	snippet := msg.Snippet
	if snippetLen > 0 && len(snippet) > snippetLen {
		snippet = snippet[:snippetLen] + "..."
	}

	return ItemSummary{
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
		From:      h["From"],
		To:        h["To"],
		Subject:   h["Subject"],
		Date:      h["Date"],
		Snippet:   snippet,
		Account:   account,
	}
}

// cleanSubject strips reply/forward prefixes for related-mail search.
func cleanSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "re:"):
			s = strings.TrimSpace(s[3:])
		case strings.HasPrefix(lower, "fwd:"):
			s = strings.TrimSpace(s[4:])
		default:
			return s
		}
	}
}

// UnreadQuery builds the loop-prevention filter baked into every unread
// listing: unread, without the processed marker, and recent.
func UnreadQuery(processedLabel string, recencyDays int) string {
	return fmt.Sprintf("is:unread -label:%s newer_than:%dd", processedLabel, recencyDays)
}
