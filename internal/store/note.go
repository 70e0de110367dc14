package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
)

// Pagination bounds. Size is clamped rather than rejected so that a
// sloppy client still gets a sane page.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page describes a pagination window. Page numbers are 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage returns a Page with the number and size normalized into
// their valid ranges.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the SQL OFFSET value for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NoteFilters holds the optional filter criteria for note listings.
// Zero values mean "no filter".
type NoteFilters struct {
	// Search matches as a case-insensitive substring of either the raw
	// text or the summary.
	Search string

	// Status restricts results to an exact processing status.
	Status domain.NoteStatus

	// CreatedAfter / CreatedBefore bound the creation timestamp
	// (inclusive at both ends).
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// IsZero reports whether no filter criteria are set.
func (f NoteFilters) IsZero() bool {
	return f.Search == "" && f.Status == "" &&
		f.CreatedAfter.IsZero() && f.CreatedBefore.IsZero()
}

// NoteStore defines the interface for note data persistence.
//
// All read operations apply role-based access control: AGENT requesters
// are implicitly scoped to the notes they own, while ADMIN requesters
// are unscoped. A note that exists but is scoped away is reported
// exactly like an absent note (ErrNoteNotFound), so callers learn
// nothing about other users' data.
type NoteStore interface {
	// Create saves a new note to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID on behalf of the
	// requesting user. Returns ErrNoteNotFound if the note does not
	// exist or is not visible to the requester.
	GetByID(ctx context.Context, id uuid.UUID, requester *domain.User) (*domain.Note, error)

	// Get retrieves a note by its unique ID without access scoping.
	// Reserved for internal consumers such as the summarization worker;
	// API request paths must go through GetByID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Note, error)

	// List retrieves the requester-visible notes matching the optional
	// filters, ordered newest-first, together with the total count of
	// the filtered set computed independently of the page window.
	// A nil page returns every matching note.
	List(
		ctx context.Context,
		requester *domain.User,
		page *Page,
		filters *NoteFilters,
	) ([]*domain.Note, int, error)

	// UpdateStatus sets the status of an existing note and advances its
	// updated_at timestamp. A non-empty summary or jobID overwrites the
	// stored value; empty arguments leave the stored values unchanged.
	// Returns the updated note, or ErrNoteNotFound if the note does not
	// exist.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		status domain.NoteStatus,
		summary string,
		jobID string,
	) (*domain.Note, error)
}
