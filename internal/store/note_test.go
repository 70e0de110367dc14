package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kerrian/notely-api/internal/domain"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		size       int
		wantNumber int
		wantSize   int
	}{
		{name: "valid values pass through", number: 3, size: 25, wantNumber: 3, wantSize: 25},
		{name: "zero number clamps to first page", number: 0, size: 10, wantNumber: 1, wantSize: 10},
		{name: "negative number clamps to first page", number: -5, size: 10, wantNumber: 1, wantSize: 10},
		{name: "zero size falls back to default", number: 1, size: 0, wantNumber: 1, wantSize: DefaultPageSize},
		{name: "oversized page clamps to max", number: 1, size: 5000, wantNumber: 1, wantSize: MaxPageSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := NewPage(tc.number, tc.size)
			assert.Equal(t, tc.wantNumber, page.Number)
			assert.Equal(t, tc.wantSize, page.Size)
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 20).Offset())
	assert.Equal(t, 20, NewPage(2, 20).Offset())
	assert.Equal(t, 90, NewPage(10, 10).Offset())
}

func TestNoteFiltersIsZero(t *testing.T) {
	assert.True(t, NoteFilters{}.IsZero())
	assert.False(t, NoteFilters{Search: "meeting"}.IsZero())
	assert.False(t, NoteFilters{Status: domain.NoteStatusDone}.IsZero())
	assert.False(t, NoteFilters{CreatedAfter: time.Now()}.IsZero())
	assert.False(t, NoteFilters{CreatedBefore: time.Now()}.IsZero())
}
