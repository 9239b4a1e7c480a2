package mailbox_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-copilot/internal/mailbox"
)

func TestCreateDraftReply(t *testing.T) {
	original := &gmail.Message{
		Id:       "m-1",
		ThreadId: "t-1",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Olle Söderqvist <olle@example.se>"},
				{Name: "Subject", Value: "Middag på lördag"},
				{Name: "Message-ID", Value: "<abc123@mail.example.se>"},
			},
		},
	}

	var created *gmail.Draft
	svc := &svcMock{
		GetMessageMetadataFunc: func(_ context.Context, _, msgID string) (*gmail.Message, error) {
			require.Equal(t, "m-1", msgID)
			return original, nil
		},
		CreateDraftFunc: func(_ context.Context, _ string, draft *gmail.Draft) (*gmail.Draft, error) {
			created = draft
			return &gmail.Draft{Id: "d-1", Message: draft.Message}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)

	reply, err := a.CreateDraftReply(context.Background(), "m-1", "Gärna! Vi kommer vid sju.", "default")
	require.NoError(t, err)
	assert.Equal(t, "d-1", reply.DraftID)
	assert.Equal(t, "t-1", reply.ThreadID)

	require.NotNil(t, created)
	assert.Equal(t, "t-1", created.Message.ThreadId)

	rawBytes, err := base64.URLEncoding.DecodeString(created.Message.Raw)
	require.NoError(t, err)
	raw := string(rawBytes)

	assert.Contains(t, raw, "Subject: Re: Middag på lördag\r\n")
	assert.Contains(t, raw, "In-Reply-To: <abc123@mail.example.se>\r\n")
	assert.Contains(t, raw, "References: <abc123@mail.example.se>\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\nGärna! Vi kommer vid sju."))

	// Non-ASCII display name must be RFC 2047 encoded, the raw bytes must
	// not leak into the To header.
	toLine := ""
	for _, line := range strings.Split(raw, "\r\n") {
		if strings.HasPrefix(line, "To: ") {
			toLine = line
		}
	}
	require.NotEmpty(t, toLine)
	assert.Contains(t, toLine, "<olle@example.se>")
	assert.Contains(t, toLine, "=?")
	assert.NotContains(t, toLine, "Söderqvist")
}

func TestCreateDraftReplyKeepsExistingRePrefix(t *testing.T) {
	original := &gmail.Message{
		Id:       "m-2",
		ThreadId: "t-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "anna@example.com"},
				{Name: "Subject", Value: "Re: Status"},
			},
		},
	}

	svc := &svcMock{
		GetMessageMetadataFunc: func(_ context.Context, _, _ string) (*gmail.Message, error) {
			return original, nil
		},
		CreateDraftFunc: func(_ context.Context, _ string, draft *gmail.Draft) (*gmail.Draft, error) {
			rawBytes, err := base64.URLEncoding.DecodeString(draft.Message.Raw)
			require.NoError(t, err)
			assert.Contains(t, string(rawBytes), "Subject: Re: Status\r\n")
			assert.NotContains(t, string(rawBytes), "Re: Re:")
			return &gmail.Draft{Id: "d-2", Message: draft.Message}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)
	_, err := a.CreateDraftReply(context.Background(), "m-2", "On it.", "default")
	require.NoError(t, err)
}

func TestReplyDraftExists(t *testing.T) {
	svc := &svcMock{
		ListDraftsFunc: func(_ context.Context, _ string) (*gmail.ListDraftsResponse, error) {
			return &gmail.ListDraftsResponse{Drafts: []*gmail.Draft{
				{Id: "d-1", Message: &gmail.Message{ThreadId: "t-1"}},
				{Id: "d-2"},
			}}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)

	exists, err := a.ReplyDraftExists(context.Background(), "t-1", "default")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = a.ReplyDraftExists(context.Background(), "t-9", "default")
	require.NoError(t, err)
	assert.False(t, exists)
}
