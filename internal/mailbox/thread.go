package mailbox

import (
	"context"
	"encoding/base64"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-copilot/internal/format"
)

// ThreadMessage is one message of a thread with its decoded body.
type ThreadMessage struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	Body      string `json:"body"`
}

// FullItem is a complete message with headers, decoded body and the
// surrounding thread. Error is set instead of raising when the message
// cannot be fetched.
type FullItem struct {
	MessageID string            `json:"message_id"`
	ThreadID  string            `json:"thread_id"`
	Account   string            `json:"account"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	Thread    []ThreadMessage   `json:"thread,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// GetThread fetches a message in full together with its thread context.
// Failures, including not-found, are reported inside the returned item
// rather than as an error so agent reasoning never sees an exception.
func (a *Adapter) GetThread(ctx context.Context, messageID, account string) FullItem {
	item := FullItem{MessageID: messageID, Account: account}

	msg, err := a.svc.GetMessage(ctx, account, messageID)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	item.ThreadID = msg.ThreadId
	item.Headers = headersMap(msg.Payload)
	item.Body = extractBody(msg.Payload)

	thread, err := a.svc.GetThread(ctx, account, msg.ThreadId)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	for _, m := range thread.Messages {
		h := headersMap(m.Payload)
		item.Thread = append(item.Thread, ThreadMessage{
			MessageID: m.Id,
			From:      h["From"],
			To:        h["To"],
			Subject:   h["Subject"],
			Date:      h["Date"],
			Snippet:   m.Snippet,
			Body:      extractBody(m.Payload),
		})
	}

	return item
}

// extractBody returns the plain-text body, falling back to a text rendering
// of the HTML body for HTML-only mail.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	textBody, htmlBody := extractMessageBodies(payload)
	if textBody != "" {
		return textBody
	}
	if htmlBody == "" {
		return ""
	}

	return format.HTML2Text([]byte(htmlBody))
}

func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		partText, partHTML := extractBodyFromPart(part)

		if textBody == "" {
			textBody = partText
		}
		if htmlBody == "" {
			htmlBody = partHTML
		}

		if len(part.Parts) > 0 {
			nestedText, nestedHTML := extractMessageBodies(part)
			if textBody == "" {
				textBody = nestedText
			}
			if htmlBody == "" {
				htmlBody = nestedHTML
			}
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" {
		return "", ""
	}

	switch part.MimeType {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}
