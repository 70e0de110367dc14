package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordSummarizer_Classification(t *testing.T) {
	s := NewKeywordSummarizer()
	ctx := context.Background()

	tests := []struct {
		name       string
		rawText    string
		wantPrefix string
	}{
		{
			name:       "important keyword yields priority summary",
			rawText:    "This is IMPORTANT, do not forget",
			wantPrefix: "Priority summary: ",
		},
		{
			name:       "urgent keyword yields priority summary",
			rawText:    "urgent: call the plumber",
			wantPrefix: "Priority summary: ",
		},
		{
			name:       "meeting keyword yields meeting summary",
			rawText:    "Meeting with the design team at 3pm",
			wantPrefix: "Meeting summary: ",
		},
		{
			name:       "priority wins over meeting",
			rawText:    "important meeting tomorrow",
			wantPrefix: "Priority summary: ",
		},
		{
			name:       "no keyword yields general note",
			rawText:    "picked up groceries",
			wantPrefix: "General note: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := s.Summarize(ctx, tt.rawText)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(summary, tt.wantPrefix),
				"summary %q should start with %q", summary, tt.wantPrefix)
			assert.True(t, strings.HasSuffix(summary, "..."))
			assert.Contains(t, summary, strings.ToLower(tt.rawText))
		})
	}
}

func TestKeywordSummarizer_ExcerptTruncation(t *testing.T) {
	s := NewKeywordSummarizer()

	long := strings.Repeat("a", 250)
	summary, err := s.Summarize(context.Background(), long)
	require.NoError(t, err)

	assert.Equal(t, "General note: "+strings.Repeat("a", 100)+"...", summary)
}

func TestKeywordSummarizer_Deterministic(t *testing.T) {
	s := NewKeywordSummarizer()
	ctx := context.Background()

	first, err := s.Summarize(ctx, "Meeting notes from standup")
	require.NoError(t, err)
	second, err := s.Summarize(ctx, "Meeting notes from standup")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestKeywordSummarizer_CancelledContext(t *testing.T) {
	s := NewKeywordSummarizer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Summarize(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
