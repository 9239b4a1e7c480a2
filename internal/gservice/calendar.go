package gservice

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendarID = "primary"

func (s *Service) newCalendar(ctx context.Context, profile string) (*calendar.Service, error) {
	_, src, err := s.httpClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, src)))
	if err != nil {
		return nil, fmt.Errorf("calendar.NewService failed: %w", err)
	}

	return svc, nil
}

// ListEvents returns single events on the primary calendar between timeMin
// and timeMax (RFC 3339), ordered by start time.
func (s *Service) ListEvents(ctx context.Context, profile, timeMin, timeMax string, maxResults int64) (*calendar.Events, error) {
	svc, err := s.newCalendar(ctx, profile)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.List(primaryCalendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("events.List failed: %w", err)
	}

	return events, nil
}

// InsertEvent creates an event on the primary calendar without sending
// attendee notifications.
func (s *Service) InsertEvent(ctx context.Context, profile string, event *calendar.Event) (*calendar.Event, error) {
	svc, err := s.newCalendar(ctx, profile)
	if err != nil {
		return nil, err
	}

	created, err := svc.Events.Insert(primaryCalendarID, event).SendUpdates("none").Do()
	if err != nil {
		return nil, fmt.Errorf("events.Insert failed: %w", err)
	}

	return created, nil
}
