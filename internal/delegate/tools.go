package delegate

import (
	"context"

	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

// Tools returns the manager's delegation surface: one tool per specialist.
// Reports always come back as text, even when the specialist failed.
func (d *Dispatcher) Tools() []agent.Tool {
	return []agent.Tool{
		d.askTool("ask_researcher", KindResearch,
			"Delegate a mailbox question to the researcher, e.g. finding earlier mail from the same sender or checking whether an invoice was paid."),
		d.askTool("ask_radio_expert", KindEntertainment,
			"Delegate a radio or podcast question to the radio expert, who can browse the Sveriges Radio catalog."),
		d.askTool("ask_calendar_secretary", KindBooking,
			"Delegate calendar work to the secretary: checking availability and booking events from mail."),
		d.askTool("ask_grounded_researcher", KindGroundedSearch,
			"Delegate an open web question to the grounded researcher, who answers with Google Search results and cites sources."),
	}
}

func (d *Dispatcher) askTool(name string, kind Kind, desc string) agent.Tool {
	return agent.Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: desc,
			Parameters: agent.ObjectSchema(map[string]*genai.Schema{
				"query":         agent.StringProp("the assignment, phrased as a complete question"),
				"email_context": agent.StringProp("relevant excerpt of the mail being triaged"),
			}, "query"),
		},
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			in, err := agent.Decode[struct {
				Query        string `json:"query"`
				EmailContext string `json:"email_context"`
			}](args)
			if err != nil {
				return nil, err
			}

			report := d.Dispatch(ctx, kind, Task{Query: in.Query, EmailContext: in.EmailContext})

			return map[string]any{"report": report}, nil
		},
	}
}
