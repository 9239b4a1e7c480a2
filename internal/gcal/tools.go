package gcal

import (
	"context"

	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

// Tools returns the calendar capabilities for the booking specialist.
func (a *Adapter) Tools() []agent.Tool {
	return []agent.Tool{
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "calendar_list_events",
				Description: "List the merged schedule of all account profiles in a time window. Use this to check availability before booking.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"time_min": agent.StringProp("window start, RFC 3339 (e.g. 2026-02-07T00:00:00+01:00)"),
					"time_max": agent.StringProp("window end, RFC 3339"),
					"limit":    agent.IntProp("max events per profile, default 50"),
				}, "time_min", "time_max"),
			},
			Handler: a.listEventsTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "calendar_create_event",
				Description: "Book an event on the shared booking calendar. Pass source_message_id so the event links back to the mail it came from.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"summary":           agent.StringProp("event title"),
					"description":       agent.StringProp("event description"),
					"start":             agent.StringProp("start, RFC 3339 datetime"),
					"end":               agent.StringProp("end, RFC 3339 datetime"),
					"location":          agent.StringProp("event location"),
					"source_message_id": agent.StringProp("ID of the mail this booking comes from"),
				}, "summary", "start", "end"),
			},
			Handler: a.createEventTool,
		},
	}
}

func (a *Adapter) listEventsTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		TimeMin string `json:"time_min"`
		TimeMax string `json:"time_max"`
		Limit   int64  `json:"limit"`
	}](args)
	if err != nil {
		return nil, err
	}

	return agent.ListPayload(a.ListEvents(ctx, in.TimeMin, in.TimeMax, in.Limit))
}

func (a *Adapter) createEventTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		Summary         string `json:"summary"`
		Description     string `json:"description"`
		Start           string `json:"start"`
		End             string `json:"end"`
		Location        string `json:"location"`
		SourceMessageID string `json:"source_message_id"`
	}](args)
	if err != nil {
		return nil, err
	}

	created, err := a.CreateEvent(ctx, EventRequest{
		Summary:         in.Summary,
		Description:     in.Description,
		Start:           in.Start,
		End:             in.End,
		Location:        in.Location,
		SourceMessageID: in.SourceMessageID,
	})
	if err != nil {
		return nil, err
	}

	return agent.Payload(created)
}
