// Package gcal wraps Google Calendar for the booking specialist: a merged
// schedule view across account profiles and event creation on the shared
// booking calendar.
package gcal

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"google.golang.org/api/calendar/v3"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

// Service is the Calendar call surface the adapter consumes.
type Service interface {
	ListEvents(ctx context.Context, profile, timeMin, timeMax string, maxResults int64) (*calendar.Events, error)
	InsertEvent(ctx context.Context, profile string, event *calendar.Event) (*calendar.Event, error)
}

const defaultEventLimit = 50

// EventSummary is one calendar event, prefixed with the profile it belongs
// to so the merged view stays attributable.
type EventSummary struct {
	EventID  string `json:"event_id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
	Account  string `json:"account"`
}

// CreatedEvent reports a booked event.
type CreatedEvent struct {
	EventID string `json:"event_id"`
	Link    string `json:"link,omitempty"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Account string `json:"account"`
}

// EventRequest describes an event to book. Start and End are RFC 3339
// datetimes; SourceMessageID links the booking back to the mail that
// triggered it.
type EventRequest struct {
	Summary         string
	Description     string
	Start           string
	End             string
	Location        string
	SourceMessageID string
}

// Adapter exposes calendar operations over all configured profiles. Events
// are booked on the booking profile so the whole household sees them.
type Adapter struct {
	svc            Service
	profiles       []string
	bookingProfile string
	timezone       string
}

// NewAdapter creates an Adapter. bookingProfile falls back to "default"
// when the preferred profile is not configured.
func NewAdapter(svc Service, profiles []string, bookingProfile, timezone string) *Adapter {
	if !slices.Contains(profiles, bookingProfile) {
		bookingProfile = "default"
	}

	return &Adapter{
		svc:            svc,
		profiles:       profiles,
		bookingProfile: bookingProfile,
		timezone:       timezone,
	}
}

// BookingProfile returns the profile new events are created on.
func (a *Adapter) BookingProfile() string {
	return a.bookingProfile
}

// ListEvents returns the merged schedule of all profiles between timeMin and
// timeMax, sorted by start. Per-profile failures are logged and tolerated so
// one broken account never hides the rest of the schedule.
func (a *Adapter) ListEvents(ctx context.Context, timeMin, timeMax string, limit int64) []EventSummary {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	var items []EventSummary
	for _, profile := range a.profiles {
		events, err := a.svc.ListEvents(ctx, profile, timeMin, timeMax, limit)
		if err != nil {
			observability.Logger().Warn("list events failed", "account", profile, "error", err)
			continue
		}

		for _, ev := range events.Items {
			items = append(items, EventSummary{
				EventID:  ev.Id,
				Summary:  fmt.Sprintf("[%s] %s", profile, ev.Summary),
				Start:    eventTime(ev.Start),
				End:      eventTime(ev.End),
				Location: ev.Location,
				Account:  profile,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Start < items[j].Start })

	return items
}

// CreateEvent books an event on the booking profile. A link to the
// originating mail is appended to the description when SourceMessageID is
// set, so the event stays traceable to its mail.
func (a *Adapter) CreateEvent(ctx context.Context, req EventRequest) (CreatedEvent, error) {
	description := req.Description
	if req.SourceMessageID != "" {
		if description != "" {
			description += "\n\n"
		}
		description += "Booked from mail: " + gmailLink(req.SourceMessageID)
	}

	created, err := a.svc.InsertEvent(ctx, a.bookingProfile, &calendar.Event{
		Summary:     req.Summary,
		Description: description,
		Location:    req.Location,
		Start:       &calendar.EventDateTime{DateTime: req.Start, TimeZone: a.timezone},
		End:         &calendar.EventDateTime{DateTime: req.End, TimeZone: a.timezone},
	})
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("create event %q failed: %w", req.Summary, err)
	}

	return CreatedEvent{
		EventID: created.Id,
		Link:    created.HtmlLink,
		Start:   eventTime(created.Start),
		End:     eventTime(created.End),
		Account: a.bookingProfile,
	}, nil
}

// eventTime prefers the datetime, falling back to the date for all-day
// events.
func eventTime(edt *calendar.EventDateTime) string {
	if edt == nil {
		return ""
	}
	if edt.DateTime != "" {
		return edt.DateTime
	}
	return edt.Date
}

func gmailLink(messageID string) string {
	return "https://mail.google.com/mail/u/0/#inbox/" + messageID
}
