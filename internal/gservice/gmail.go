// Package gservice constructs Google API clients per account profile and
// exposes the narrow set of calls the adapters consume.
package gservice

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/mail-copilot/internal/auth"
)

const gmailUserID = "me"

// Scopes needed by the copilot: Gmail label/draft mutation and calendar
// read/write share one consent per profile.
var Scopes = []string{gmail.GmailModifyScope, calendar.CalendarScope}

// Service builds Gmail and Calendar clients on demand for a profile.
type Service struct {
	mgr *auth.Manager
}

// New creates a Service backed by the token manager.
func New(mgr *auth.Manager) *Service {
	return &Service{mgr: mgr}
}

func (s *Service) httpClient(ctx context.Context, profile string) (*oauth2.Config, *savingSource, error) {
	tok, err := s.mgr.Token(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("mgr.Token failed: %w", err)
	}

	cfg, err := s.mgr.Config()
	if err != nil {
		return nil, nil, err
	}

	t, err := tok.OAuthToken()
	if err != nil {
		return nil, nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	return cfg, &savingSource{src: cfg.TokenSource(ctx, t), tok: tok}, nil
}

func (s *Service) newGmail(ctx context.Context, profile string) (*gmail.Service, error) {
	_, src, err := s.httpClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, src)))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

// savingSource writes refreshed tokens back to the profile's Token so they
// get persisted at shutdown.
type savingSource struct {
	src oauth2.TokenSource
	tok *auth.Token
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.tok.Update(t)
	return t, nil
}

// ListMessages runs a Gmail query returning message references.
func (s *Service) ListMessages(ctx context.Context, profile, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	result, err := svc.Users.Messages.List(gmailUserID).
		Q(q).
		MaxResults(maxResults).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

// GetMessageMetadata fetches envelope headers only.
func (s *Service) GetMessageMetadata(ctx context.Context, profile, msgID string) (*gmail.Message, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("METADATA").
		MetadataHeaders("From", "To", "Cc", "Subject", "Date", "Message-ID").
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// GetMessage fetches the full message including body parts.
func (s *Service) GetMessage(ctx context.Context, profile, msgID string) (*gmail.Message, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).Format("FULL").Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// GetThread fetches all messages of a thread in full format.
func (s *Service) GetThread(ctx context.Context, profile, threadID string) (*gmail.Thread, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	thread, err := svc.Users.Threads.Get(gmailUserID, threadID).Format("FULL").Do()
	if err != nil {
		return nil, fmt.Errorf("threads.Get failed: %w", err)
	}

	return thread, nil
}

// ListLabels returns all labels of the profile's mailbox.
func (s *Service) ListLabels(ctx context.Context, profile string) (*gmail.ListLabelsResponse, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	labels, err := svc.Users.Labels.List(gmailUserID).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.List failed: %w", err)
	}

	return labels, nil
}

// CreateLabel creates a user label visible in the label and message lists.
func (s *Service) CreateLabel(ctx context.Context, profile, name string) (*gmail.Label, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	label, err := svc.Users.Labels.Create(gmailUserID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.Create failed: %w", err)
	}

	return label, nil
}

// ModifyMessage adds label IDs to a message.
func (s *Service) ModifyMessage(ctx context.Context, profile, msgID string, addLabelIDs []string) (*gmail.Message, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Modify(gmailUserID, msgID, &gmail.ModifyMessageRequest{
		AddLabelIds: addLabelIDs,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Modify failed: %w", err)
	}

	return msg, nil
}

// ListDrafts returns the profile's drafts.
func (s *Service) ListDrafts(ctx context.Context, profile string) (*gmail.ListDraftsResponse, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	drafts, err := svc.Users.Drafts.List(gmailUserID).Do()
	if err != nil {
		return nil, fmt.Errorf("drafts.List failed: %w", err)
	}

	return drafts, nil
}

// CreateDraft stores a draft message.
func (s *Service) CreateDraft(ctx context.Context, profile string, draft *gmail.Draft) (*gmail.Draft, error) {
	svc, err := s.newGmail(ctx, profile)
	if err != nil {
		return nil, err
	}

	created, err := svc.Users.Drafts.Create(gmailUserID, draft).Do()
	if err != nil {
		return nil, fmt.Errorf("drafts.Create failed: %w", err)
	}

	return created, nil
}
