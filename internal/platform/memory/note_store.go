package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/store"
)

// NoteStore is an in-memory implementation of store.NoteStore.
// It mirrors the Postgres implementation's semantics, including role
// scoping, filtering, newest-first ordering and partial status updates.
// Safe for concurrent use.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]*domain.Note
}

// NewNoteStore creates an empty in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{
		notes: make(map[uuid.UUID]*domain.Note),
	}
}

// Ensure NoteStore implements store.NoteStore interface
var _ store.NoteStore = (*NoteStore)(nil)

// Create implements store.NoteStore.Create
func (s *NoteStore) Create(ctx context.Context, note *domain.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *note
	s.notes[note.ID] = &stored
	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *NoteStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	requester *domain.User,
) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, exists := s.notes[id]
	if !exists {
		return nil, store.ErrNoteNotFound
	}

	// Scoped-away notes report exactly like absent ones.
	if !requester.IsAdmin() && note.OwnerID != requester.ID {
		return nil, store.ErrNoteNotFound
	}

	copied := *note
	return &copied, nil
}

// Get implements store.NoteStore.Get
func (s *NoteStore) Get(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, exists := s.notes[id]
	if !exists {
		return nil, store.ErrNoteNotFound
	}

	copied := *note
	return &copied, nil
}

// List implements store.NoteStore.List
func (s *NoteStore) List(
	ctx context.Context,
	requester *domain.User,
	page *store.Page,
	filters *store.NoteFilters,
) ([]*domain.Note, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Note
	for _, note := range s.notes {
		if !requester.IsAdmin() && note.OwnerID != requester.ID {
			continue
		}
		if !matchesFilters(note, filters) {
			continue
		}
		copied := *note
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	if page != nil {
		start := page.Offset()
		if start > total {
			start = total
		}
		end := start + page.Size
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	if matched == nil {
		matched = []*domain.Note{}
	}
	return matched, total, nil
}

// UpdateStatus implements store.NoteStore.UpdateStatus
func (s *NoteStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.NoteStatus,
	summary string,
	jobID string,
) (*domain.Note, error) {
	if _, err := domain.ParseNoteStatus(string(status)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note, exists := s.notes[id]
	if !exists {
		return nil, store.ErrNoteNotFound
	}

	note.Status = status
	if summary != "" {
		note.Summary = summary
	}
	if jobID != "" {
		note.JobID = jobID
	}
	note.UpdatedAt = time.Now().UTC()

	copied := *note
	return &copied, nil
}

// matchesFilters applies the optional filter criteria to a note.
func matchesFilters(note *domain.Note, filters *store.NoteFilters) bool {
	if filters == nil {
		return true
	}

	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		inText := strings.Contains(strings.ToLower(note.RawText), needle)
		inSummary := strings.Contains(strings.ToLower(note.Summary), needle)
		if !inText && !inSummary {
			return false
		}
	}

	if filters.Status != "" && note.Status != filters.Status {
		return false
	}

	if !filters.CreatedAfter.IsZero() && note.CreatedAt.Before(filters.CreatedAfter) {
		return false
	}

	if !filters.CreatedBefore.IsZero() && note.CreatedAt.After(filters.CreatedBefore) {
		return false
	}

	return true
}
