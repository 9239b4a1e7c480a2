package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// DraftReply identifies a created draft and its thread.
type DraftReply struct {
	DraftID  string `json:"draft_id"`
	ThreadID string `json:"thread_id"`
}

// CreateDraftReply creates a draft answering the given message: subject
// gets a Re: prefix, the reply is threaded via In-Reply-To/References, and
// non-ASCII recipient names are RFC 2047 encoded.
func (a *Adapter) CreateDraftReply(ctx context.Context, messageID, replyBody, account string) (DraftReply, error) {
	original, err := a.svc.GetMessageMetadata(ctx, account, messageID)
	if err != nil {
		return DraftReply{}, fmt.Errorf("get message %s failed: %w", messageID, err)
	}

	h := headersMap(original.Payload)
	raw := buildReplyMIME(h["From"], h["Subject"], h["Message-ID"], replyBody)

	draft, err := a.svc.CreateDraft(ctx, account, &gmail.Draft{
		Message: &gmail.Message{
			Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
			ThreadId: original.ThreadId,
		},
	})
	if err != nil {
		return DraftReply{}, fmt.Errorf("svc.CreateDraft failed: %w", err)
	}

	return DraftReply{DraftID: draft.Id, ThreadID: original.ThreadId}, nil
}

// ReplyDraftExists reports whether a draft already exists on the thread,
// so the manager can avoid drafting the same answer twice.
func (a *Adapter) ReplyDraftExists(ctx context.Context, threadID, account string) (bool, error) {
	drafts, err := a.svc.ListDrafts(ctx, account)
	if err != nil {
		return false, fmt.Errorf("svc.ListDrafts failed: %w", err)
	}

	for _, d := range drafts.Drafts {
		if d.Message != nil && d.Message.ThreadId == threadID {
			return true, nil
		}
	}

	return false, nil
}

func buildReplyMIME(to, subject, messageIDHeader, body string) string {
	var b strings.Builder

	b.WriteString("To: " + encodeAddress(to) + "\r\n")
	b.WriteString("Subject: " + replySubject(subject) + "\r\n")
	if messageIDHeader != "" {
		b.WriteString("In-Reply-To: " + messageIDHeader + "\r\n")
		b.WriteString("References: " + messageIDHeader + "\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return b.String()
}

// encodeAddress re-serializes an address header so display names with
// non-ASCII characters are RFC 2047 encoded instead of breaking the header.
func encodeAddress(raw string) string {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return raw
	}
	return addr.String()
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}
