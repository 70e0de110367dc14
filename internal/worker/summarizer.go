// Package worker implements the summarization worker: it consumes jobs
// from the queue and drives each note through the
// queued → processing → {done|failed} lifecycle.
package worker

import (
	"context"
	"fmt"
	"strings"
)

// summaryExcerptLen is how much of the note text a summary quotes.
const summaryExcerptLen = 100

// Summarizer produces a summary for a note's raw text. The computation
// may be slow and blocking; it is expected to either complete or fail,
// with no internal timeout.
type Summarizer interface {
	Summarize(ctx context.Context, rawText string) (string, error)
}

// KeywordSummarizer is the deterministic, content-classifying
// summarizer: keywords in the text select the summary style, and the
// summary quotes an excerpt of the lowercased text.
type KeywordSummarizer struct{}

// NewKeywordSummarizer creates a KeywordSummarizer.
func NewKeywordSummarizer() *KeywordSummarizer {
	return &KeywordSummarizer{}
}

// Ensure KeywordSummarizer implements Summarizer
var _ Summarizer = (*KeywordSummarizer)(nil)

// Summarize implements Summarizer.
// Classification is case-insensitive: "important" or "urgent" yields a
// priority summary, "meeting" a meeting summary, anything else a general
// note. Re-running over the same text always produces the same summary.
func (s *KeywordSummarizer) Summarize(ctx context.Context, rawText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.ToLower(rawText)

	excerpt := text
	if len(excerpt) > summaryExcerptLen {
		excerpt = excerpt[:summaryExcerptLen]
	}

	switch {
	case strings.Contains(text, "important") || strings.Contains(text, "urgent"):
		return fmt.Sprintf("Priority summary: %s...", excerpt), nil
	case strings.Contains(text, "meeting"):
		return fmt.Sprintf("Meeting summary: %s...", excerpt), nil
	default:
		return fmt.Sprintf("General note: %s...", excerpt), nil
	}
}
