package triage

import (
	"github.com/hal9000y/mail-copilot/internal/agent"
)

const managerDefault = "You are the mail manager of a busy family. You triage unread mail across " +
	"their accounts: understand each message, delegate to your specialists when their expertise " +
	"helps, and prepare draft replies for mail that deserves an answer. Never send mail, only " +
	"draft. Be brief and concrete in your final report."

// ManagerDefaults returns the built-in manager instruction fallback.
func ManagerDefaults() map[string]string {
	return map[string]string{"manager": managerDefault}
}

// ManagerBuilder wires the manager definition: the full mailbox tool set,
// the calendar view and the delegation surface.
func ManagerBuilder(instructions *agent.Store, model string, tools []agent.Tool) Builder {
	return func() (agent.Definition, error) {
		return agent.Definition{
			Name:           "manager",
			Model:          model,
			Instruction:    instructions.Instruction("manager"),
			Temperature:    0.2,
			ThinkingBudget: 8000,
			Tools:          tools,
		}, nil
	}
}
