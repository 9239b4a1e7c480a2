package mailbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-copilot/internal/mailbox"
)

func TestApplyLabelCreatesOnceAndCaches(t *testing.T) {
	var listCalls, createCalls int
	var applied [][]string

	svc := &svcMock{
		ListLabelsFunc: func(_ context.Context, _ string) (*gmail.ListLabelsResponse, error) {
			listCalls++
			return &gmail.ListLabelsResponse{Labels: []*gmail.Label{
				{Id: "Label_1", Name: "Receipts"},
			}}, nil
		},
		CreateLabelFunc: func(_ context.Context, _, name string) (*gmail.Label, error) {
			createCalls++
			require.Equal(t, "AI-Processed", name)
			return &gmail.Label{Id: "Label_2", Name: name}, nil
		},
		ModifyMessageFunc: func(_ context.Context, _, msgID string, addLabelIDs []string) (*gmail.Message, error) {
			applied = append(applied, addLabelIDs)
			return &gmail.Message{Id: msgID}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)

	require.NoError(t, a.ApplyLabel(context.Background(), "m-1", "AI-Processed", "default"))
	require.NoError(t, a.ApplyLabel(context.Background(), "m-2", "AI-Processed", "default"))

	// Second apply hits the cache, no second lookup or create.
	assert.Equal(t, 1, listCalls)
	assert.Equal(t, 1, createCalls)
	assert.Equal(t, [][]string{{"Label_2"}, {"Label_2"}}, applied)
}

func TestApplyLabelReusesExisting(t *testing.T) {
	svc := &svcMock{
		ListLabelsFunc: func(_ context.Context, _ string) (*gmail.ListLabelsResponse, error) {
			return &gmail.ListLabelsResponse{Labels: []*gmail.Label{
				{Id: "Label_7", Name: "AI-Processed"},
			}}, nil
		},
		ModifyMessageFunc: func(_ context.Context, _, msgID string, addLabelIDs []string) (*gmail.Message, error) {
			assert.Equal(t, []string{"Label_7"}, addLabelIDs)
			return &gmail.Message{Id: msgID}, nil
		},
	}

	a := mailbox.NewAdapter(svc, []string{"default"}, "AI-Processed", 7)
	require.NoError(t, a.ApplyLabel(context.Background(), "m-1", "AI-Processed", "default"))
}
