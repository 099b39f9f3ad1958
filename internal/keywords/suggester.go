// Package keywords asks a language model for search keywords for events that
// have none, so the keyword-similar pool has something to match on.
package keywords

import (
	"context"
	"fmt"
	"strings"

	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/observability"
)

const systemPrompt = `You tag events on a history timeline used by a classical-education quiz.
Reply with up to 8 comma-separated keywords for the event: proper nouns first
(people, places, peoples, empires), then distinctive terms. Use the capitalisation
the words normally have. Reply with the keywords only.`

const eventLinePrefix = "Event: "

type Suggester struct {
	llm    LLMClient
	logger *observability.Logger
}

func NewSuggester(llm LLMClient, logger *observability.Logger) *Suggester {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Suggester{llm: llm, logger: logger}
}

// Suggest returns up to MaxKeywords keywords for e.
func (s *Suggester) Suggest(ctx context.Context, e models.Event) ([]string, error) {
	resp, err := s.llm.Generate(ctx, systemPrompt, buildPrompt(e))
	if err != nil {
		return nil, err
	}

	keywords, err := ParseKeywords(resp.Content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Suggested keywords", map[string]interface{}{
		"event_id":      e.ID,
		"event_name":    e.Name,
		"keywords":      keywords,
		"prompt_tokens": resp.PromptTokens,
		"output_tokens": resp.OutputTokens,
	})
	return keywords, nil
}

func buildPrompt(e models.Event) string {
	var b strings.Builder
	b.WriteString(eventLinePrefix + e.Name + "\n")
	if d, err := e.EffectiveDate(); err == nil {
		approx := ""
		if e.Start == nil {
			approx = " (approximate)"
		}
		fmt.Fprintf(&b, "Date: %s%s\n", formatYear(d), approx)
	}
	if e.PrimarySentence != nil && *e.PrimarySentence != "" {
		b.WriteString("Description: " + *e.PrimarySentence + "\n")
	}
	return b.String()
}

func formatYear(y int) string {
	if y < 0 {
		return fmt.Sprintf("%d BC", -y)
	}
	return fmt.Sprintf("AD %d", y)
}
