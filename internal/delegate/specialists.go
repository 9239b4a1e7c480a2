package delegate

import (
	"github.com/hal9000y/mail-copilot/internal/agent"
)

// Built-in specialist instructions, used when no instruction file exists.
const (
	researchDefault = "You are a mailbox researcher. Answer questions about the user's mail by " +
		"searching across all account profiles and reading full threads. Quote dates, senders and " +
		"amounts precisely. Finish with a short written report of what you found."

	entertainmentDefault = "You are a Swedish radio expert with access to the Sveriges Radio open " +
		"catalog. Recommend channels, programs, episodes and podcasts that fit the request, with " +
		"broadcast times and listen links where available. Finish with a short written report."

	bookingDefault = "You are a calendar secretary. Check the merged family schedule for conflicts " +
		"before booking, book events on the shared calendar with sensible start and end times, and " +
		"always link the originating mail. Finish with a short written report of what you booked."
)

// SpecialistDeps carries everything the specialist builders need.
type SpecialistDeps struct {
	Instructions  *agent.Store
	Model         string
	MailTools     []agent.Tool
	RadioTools    []agent.Tool
	CalendarTools []agent.Tool
}

// InstructionDefaults returns the built-in instruction fallbacks for the
// specialist kinds.
func InstructionDefaults() map[string]string {
	return map[string]string{
		string(KindResearch):      researchDefault,
		string(KindEntertainment): entertainmentDefault,
		string(KindBooking):       bookingDefault,
	}
}

// Builders wires the three tool-using specialists. Instructions are
// resolved per delegation so operator edits apply without a restart. The
// variants differ only in configuration: temperature and thinking budget
// scale with how exploratory each job is.
func Builders(deps SpecialistDeps) map[Kind]Builder {
	return map[Kind]Builder{
		KindResearch: func() (agent.Definition, error) {
			return agent.Definition{
				Name:           "researcher",
				Model:          deps.Model,
				Instruction:    deps.Instructions.Instruction(string(KindResearch)),
				Temperature:    0.2,
				ThinkingBudget: 12000,
				Tools:          deps.MailTools,
			}, nil
		},
		KindEntertainment: func() (agent.Definition, error) {
			return agent.Definition{
				Name:           "radio-expert",
				Model:          deps.Model,
				Instruction:    deps.Instructions.Instruction(string(KindEntertainment)),
				Temperature:    0.4,
				ThinkingBudget: 8000,
				Tools:          deps.RadioTools,
			}, nil
		},
		KindBooking: func() (agent.Definition, error) {
			return agent.Definition{
				Name:           "calendar-secretary",
				Model:          deps.Model,
				Instruction:    deps.Instructions.Instruction(string(KindBooking)),
				Temperature:    0.1,
				ThinkingBudget: 4000,
				Tools:          deps.CalendarTools,
			}, nil
		},
	}
}
