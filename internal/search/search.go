// Package search answers questions with Google-grounded generation: a
// single model call carrying the GoogleSearch tool instead of an agent
// loop, since grounding happens server side.
package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hal9000y/mail-copilot/internal/agent"
)

const groundedTemperature = 0.3

const defaultInstruction = "You answer questions using Google Search grounding. " +
	"Be factual and concise, and say so when the search results do not settle the question."

// Searcher runs grounded web searches.
type Searcher struct {
	gen         agent.Generator
	model       string
	instruction string
}

// NewSearcher creates a Searcher on the given model. instruction may be
// empty to use the built-in one.
func NewSearcher(gen agent.Generator, model, instruction string) *Searcher {
	if instruction == "" {
		instruction = defaultInstruction
	}

	return &Searcher{gen: gen, model: model, instruction: instruction}
}

// Search asks the grounded model one question. emailContext, when present,
// is prepended so the model knows what mail the question serves. The answer
// carries a Sources line built from the grounding metadata.
func (s *Searcher) Search(ctx context.Context, query, emailContext string) (string, error) {
	prompt := query
	if emailContext != "" {
		prompt = fmt.Sprintf("Context from an email being processed:\n%s\n\nQuestion: %s", emailContext, query)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(groundedTemperature)),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: s.instruction}}},
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("gen.GenerateContent failed: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("grounded search returned no text for %q", query)
	}

	if sources := groundingSources(resp); len(sources) > 0 {
		answer += "\n\nSources: " + strings.Join(sources, ", ")
	}

	return answer, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []string
	seen := map[string]bool{}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.Title == "" || seen[chunk.Web.Title] {
			continue
		}
		seen[chunk.Web.Title] = true
		sources = append(sources, chunk.Web.Title)
	}

	return sources
}
