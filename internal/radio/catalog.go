// Package radio exposes the Sveriges Radio open catalog to the
// entertainment specialist through a remote MCP tool server.
package radio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// session is the slice of an MCP client session the catalog uses.
type session interface {
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

// Catalog proxies tool calls to the remote radio catalog server. A fresh
// session is dialed per call; the catalog endpoint is a stateless read-only
// API and the triage cadence is far too slow to justify a held connection.
type Catalog struct {
	endpoint string
	dial     func(ctx context.Context) (session, error)
}

// NewCatalog creates a Catalog talking to the given MCP endpoint.
func NewCatalog(endpoint string) *Catalog {
	c := &Catalog{endpoint: endpoint}
	c.dial = c.dialStreamable
	return c
}

func (c *Catalog) dialStreamable(ctx context.Context) (session, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "mail-copilot", Version: "1.0.0"}, nil)

	sess, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: c.endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s failed: %w", c.endpoint, err)
	}

	return sess, nil
}

// Call invokes one remote catalog tool and returns its text payload. A
// result flagged as an error comes back as a Go error so the agent loop
// reports it like any other tool failure.
func (c *Catalog) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	sess, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	result, err := sess.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: cleanArgs(args),
	})
	if err != nil {
		return "", fmt.Errorf("call %s failed: %w", name, err)
	}

	text := contentText(result)
	if result.IsError {
		if text == "" {
			text = "remote tool reported an error"
		}
		return "", errors.New(text)
	}

	return text, nil
}

// cleanArgs drops nil and empty-string values so optional parameters the
// model left blank never reach the remote server.
func cleanArgs(args map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range args {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func contentText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(*mcp.TextContent); ok && tc.Text != "" {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
