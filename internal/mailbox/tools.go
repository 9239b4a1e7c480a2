package mailbox

import (
	"context"

	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

// Tools returns the full mailbox capability set for the manager agent,
// including the marker and draft mutations.
func (a *Adapter) Tools() []agent.Tool {
	return append(a.ReadTools(),
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_apply_label",
				Description: "Create or reuse a Gmail label and apply it to a message. Use this to mark handled mail.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"message_id": agent.StringProp("ID of the message to label"),
					"label_name": agent.StringProp("label name, created if absent"),
					"account":    agent.StringProp("account profile, defaults to 'default'"),
				}, "message_id", "label_name"),
			},
			Handler: a.applyLabelTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_create_draft_reply",
				Description: "Create a Gmail draft reply to a message. Threads the reply and prefixes the subject with Re:.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"message_id": agent.StringProp("ID of the message to answer"),
					"reply_body": agent.StringProp("plain text body of the reply"),
					"account":    agent.StringProp("account profile, defaults to 'default'"),
				}, "message_id", "reply_body"),
			},
			Handler: a.createDraftReplyTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_reply_draft_exists",
				Description: "Check whether a reply draft already exists for a thread, to avoid drafting twice.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"thread_id": agent.StringProp("thread to check"),
					"account":   agent.StringProp("account profile, defaults to 'default'"),
				}, "thread_id"),
			},
			Handler: a.replyDraftExistsTool,
		},
	)
}

// ReadTools returns the read-only mailbox capabilities used by the research
// specialist: search and thread reading, no mutations.
func (a *Adapter) ReadTools() []agent.Tool {
	return []agent.Tool{
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_list_unread",
				Description: "List unread messages that are not yet processed, with light metadata.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"limit":   agent.IntProp("maximum number of messages"),
					"account": agent.StringProp("account profile, defaults to 'default'"),
				}),
			},
			Handler: a.listUnreadTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_search",
				Description: "Search messages with Gmail query syntax (e.g. 'from:someone subject:waffles') across account profiles. Use a higher limit and short snippet_length to scan broadly.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"query":          agent.StringProp("Gmail search query"),
					"limit":          agent.IntProp("max results per profile, default 5"),
					"snippet_length": agent.IntProp("snippet truncation length, default 100"),
					"accounts":       agent.StringArrayProp("profiles to search, defaults to all configured"),
				}, "query"),
			},
			Handler: a.searchTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_get_thread",
				Description: "Fetch the full message body and its whole thread for deep reading.",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"message_id": agent.StringProp("message to fetch"),
					"account":    agent.StringProp("account profile, defaults to 'default'"),
				}, "message_id"),
			},
			Handler: a.getThreadTool,
		},
		agent.Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "gmail_find_related",
				Description: "Find mails with the same subject across all profiles (reply/forward prefixes stripped).",
				Parameters: agent.ObjectSchema(map[string]*genai.Schema{
					"message_id": agent.StringProp("message whose subject to match"),
					"account":    agent.StringProp("account profile the message lives in"),
				}, "message_id"),
			},
			Handler: a.findRelatedTool,
		},
	}
}

func (a *Adapter) listUnreadTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		Limit   int64  `json:"limit"`
		Account string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}

	items, err := a.ListUnread(ctx, in.Limit, defaultAccount(in.Account))
	if err != nil {
		return nil, err
	}

	return agent.ListPayload(items)
}

func (a *Adapter) searchTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		Query         string   `json:"query"`
		Limit         int64    `json:"limit"`
		SnippetLength int      `json:"snippet_length"`
		Accounts      []string `json:"accounts"`
	}](args)
	if err != nil {
		return nil, err
	}

	return agent.ListPayload(a.Search(ctx, in.Query, in.Limit, in.SnippetLength, in.Accounts))
}

func (a *Adapter) getThreadTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		MessageID string `json:"message_id"`
		Account   string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}

	return agent.Payload(a.GetThread(ctx, in.MessageID, defaultAccount(in.Account)))
}

func (a *Adapter) findRelatedTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		MessageID string `json:"message_id"`
		Account   string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}

	items, err := a.FindRelated(ctx, in.MessageID, defaultAccount(in.Account))
	if err != nil {
		return nil, err
	}

	return agent.ListPayload(items)
}

func (a *Adapter) applyLabelTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		MessageID string `json:"message_id"`
		LabelName string `json:"label_name"`
		Account   string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}

	if err := a.ApplyLabel(ctx, in.MessageID, in.LabelName, defaultAccount(in.Account)); err != nil {
		return nil, err
	}

	return map[string]any{"message_id": in.MessageID, "label": in.LabelName, "applied": true}, nil
}

func (a *Adapter) createDraftReplyTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		MessageID string `json:"message_id"`
		ReplyBody string `json:"reply_body"`
		Account   string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}

	reply, err := a.CreateDraftReply(ctx, in.MessageID, in.ReplyBody, defaultAccount(in.Account))
	if err != nil {
		return nil, err
	}

	return agent.Payload(reply)
}

func (a *Adapter) replyDraftExistsTool(ctx context.Context, args map[string]any) (map[string]any, error) {
	in, err := agent.Decode[struct {
		ThreadID string `json:"thread_id"`
		Account  string `json:"account"`
	}](args)
	if err != nil {
		return nil, err
	}

	exists, err := a.ReplyDraftExists(ctx, in.ThreadID, defaultAccount(in.Account))
	if err != nil {
		return nil, err
	}

	return map[string]any{"thread_id": in.ThreadID, "exists": exists}, nil
}

func defaultAccount(account string) string {
	if account == "" {
		return "default"
	}
	return account
}
