package mailbox_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-copilot/internal/mailbox"
)

type svcMock struct {
	ListMessagesFunc       func(ctx context.Context, profile, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadataFunc func(ctx context.Context, profile, msgID string) (*gmail.Message, error)
	GetMessageFunc         func(ctx context.Context, profile, msgID string) (*gmail.Message, error)
	GetThreadFunc          func(ctx context.Context, profile, threadID string) (*gmail.Thread, error)
	ListLabelsFunc         func(ctx context.Context, profile string) (*gmail.ListLabelsResponse, error)
	CreateLabelFunc        func(ctx context.Context, profile, name string) (*gmail.Label, error)
	ModifyMessageFunc      func(ctx context.Context, profile, msgID string, addLabelIDs []string) (*gmail.Message, error)
	ListDraftsFunc         func(ctx context.Context, profile string) (*gmail.ListDraftsResponse, error)
	CreateDraftFunc        func(ctx context.Context, profile string, draft *gmail.Draft) (*gmail.Draft, error)
}

var errNotWired = errors.New("not wired")

func (m *svcMock) ListMessages(ctx context.Context, profile, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	if m.ListMessagesFunc == nil {
		return nil, errNotWired
	}
	return m.ListMessagesFunc(ctx, profile, q, maxResults)
}

func (m *svcMock) GetMessageMetadata(ctx context.Context, profile, msgID string) (*gmail.Message, error) {
	if m.GetMessageMetadataFunc == nil {
		return nil, errNotWired
	}
	return m.GetMessageMetadataFunc(ctx, profile, msgID)
}

func (m *svcMock) GetMessage(ctx context.Context, profile, msgID string) (*gmail.Message, error) {
	if m.GetMessageFunc == nil {
		return nil, errNotWired
	}
	return m.GetMessageFunc(ctx, profile, msgID)
}

func (m *svcMock) GetThread(ctx context.Context, profile, threadID string) (*gmail.Thread, error) {
	if m.GetThreadFunc == nil {
		return nil, errNotWired
	}
	return m.GetThreadFunc(ctx, profile, threadID)
}

func (m *svcMock) ListLabels(ctx context.Context, profile string) (*gmail.ListLabelsResponse, error) {
	if m.ListLabelsFunc == nil {
		return nil, errNotWired
	}
	return m.ListLabelsFunc(ctx, profile)
}

func (m *svcMock) CreateLabel(ctx context.Context, profile, name string) (*gmail.Label, error) {
	if m.CreateLabelFunc == nil {
		return nil, errNotWired
	}
	return m.CreateLabelFunc(ctx, profile, name)
}

func (m *svcMock) ModifyMessage(ctx context.Context, profile, msgID string, addLabelIDs []string) (*gmail.Message, error) {
	if m.ModifyMessageFunc == nil {
		return nil, errNotWired
	}
	return m.ModifyMessageFunc(ctx, profile, msgID, addLabelIDs)
}

func (m *svcMock) ListDrafts(ctx context.Context, profile string) (*gmail.ListDraftsResponse, error) {
	if m.ListDraftsFunc == nil {
		return nil, errNotWired
	}
	return m.ListDraftsFunc(ctx, profile)
}

func (m *svcMock) CreateDraft(ctx context.Context, profile string, draft *gmail.Draft) (*gmail.Draft, error) {
	if m.CreateDraftFunc == nil {
		return nil, errNotWired
	}
	return m.CreateDraftFunc(ctx, profile, draft)
}

func metaMessage(id, from, subject string) *gmail.Message {
	return &gmail.Message{
		Id:       id,
		ThreadId: "t-" + id,
		Snippet:  "snippet for " + id,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "To", Value: "me@example.com"},
				{Name: "Subject", Value: subject},
				{Name: "Date", Value: "Mon, 12 Jan 2026 10:00:00 +0100"},
			},
		},
	}
}

func TestListUnreadFiltersViaQuery(t *testing.T) {
	unmarked := []*gmail.Message{{Id: "m-1"}, {Id: "m-2"}}

	var gotQuery string
	svc := &svcMock{
		ListMessagesFunc: func(_ context.Context, profile, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
			gotQuery = q
			assert.Equal(t, "default", profile)
			assert.EqualValues(t, 10, maxResults)
			return &gmail.ListMessagesResponse{Messages: unmarked}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, _, msgID string) (*gmail.Message, error) {
			return metaMessage(msgID, "Anna <anna@example.com>", "Hello "+msgID), nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)

	items, err := a.ListUnread(context.Background(), 10, "default")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "is:unread -label:AI-Processed newer_than:7d", gotQuery)
	assert.Equal(t, "m-1", items[0].MessageID)
	assert.Equal(t, "t-m-1", items[0].ThreadID)
	assert.Equal(t, "Anna <anna@example.com>", items[0].From)
	assert.Equal(t, "default", items[0].Account)
}

func TestUnreadCountSwallowsProbeErrors(t *testing.T) {
	svc := &svcMock{
		ListMessagesFunc: func(_ context.Context, _, _ string, maxResults int64) (*gmail.ListMessagesResponse, error) {
			assert.EqualValues(t, 1, maxResults)
			return nil, errors.New("backend unavailable")
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)
	assert.Equal(t, 0, a.UnreadCount(context.Background(), "default"))
}

func TestSearchAcrossProfiles(t *testing.T) {
	svc := &svcMock{
		ListMessagesFunc: func(_ context.Context, profile, _ string, _ int64) (*gmail.ListMessagesResponse, error) {
			if profile == "private" {
				return nil, errors.New("token expired")
			}
			return &gmail.ListMessagesResponse{Messages: []*gmail.Message{{Id: profile + "-1"}}}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, _, msgID string) (*gmail.Message, error) {
			msg := metaMessage(msgID, "Someone <a@b.c>", "Subject")
			msg.Snippet = "0123456789012345"
			return msg, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default", "private"}, "AI-Processed", 7)

	// "family" is not configured and must be skipped; "private" fails and
	// must be tolerated.
	items := a.Search(context.Background(), "subject:waffles", 5, 10, []string{"default", "private", "family"})
	require.Len(t, items, 1)
	assert.Equal(t, "default-1", items[0].MessageID)
	assert.Equal(t, "0123456789...", items[0].Snippet)
	assert.Equal(t, "default", items[0].Account)
}

func TestFindRelatedStripsReplyPrefix(t *testing.T) {
	var gotQuery string
	svc := &svcMock{
		GetMessageMetadataFunc: func(_ context.Context, _, msgID string) (*gmail.Message, error) {
			return metaMessage(msgID, "a@b.c", "Re: Fwd: Trip to London"), nil
		},
		ListMessagesFunc: func(_ context.Context, _, q string, _ int64) (*gmail.ListMessagesResponse, error) {
			gotQuery = q
			return &gmail.ListMessagesResponse{}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)

	_, err := a.FindRelated(context.Background(), "m-1", "default")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("subject:%q", "Trip to London"), gotQuery)
}
