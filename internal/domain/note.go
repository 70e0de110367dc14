package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NoteStatus represents the processing state of a note's summarization.
type NoteStatus string

// Possible note status values. These serialize as the literal strings
// stored in the database and returned over the API.
const (
	NoteStatusQueued     NoteStatus = "queued"
	NoteStatusProcessing NoteStatus = "processing"
	NoteStatusDone       NoteStatus = "done"
	NoteStatusFailed     NoteStatus = "failed"
)

// Common validation errors for Note
var (
	ErrEmptyNoteID      = errors.New("note ID cannot be empty")
	ErrEmptyNoteOwnerID = errors.New("note owner ID cannot be empty")
	ErrEmptyNoteText    = errors.New("note text cannot be empty")
	ErrInvalidStatus    = errors.New("invalid note status")
)

// Note represents a free-text entry submitted by a user. The original
// text is immutable; the summary is written only by the summarization
// worker once processing finishes.
type Note struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	RawText   string     `json:"raw_text"`
	Summary   string     `json:"summary,omitempty"`
	Status    NoteStatus `json:"status"`
	JobID     string     `json:"job_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNote creates a new Note owned by the given user. It generates a new
// UUID for the note, sets the status to queued, and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewNote(ownerID uuid.UUID, rawText string) (*Note, error) {
	now := time.Now().UTC()
	note := &Note{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		RawText:   rawText,
		Status:    NoteStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
// Returns an error if any field fails validation.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNoteID
	}

	if n.OwnerID == uuid.Nil {
		return ErrEmptyNoteOwnerID
	}

	if n.RawText == "" {
		return ErrEmptyNoteText
	}

	if !isValidNoteStatus(n.Status) {
		return ErrInvalidStatus
	}

	return nil
}

// ParseNoteStatus converts a string into a NoteStatus.
// Returns ErrInvalidStatus if the string is not a known status value.
func ParseNoteStatus(s string) (NoteStatus, error) {
	status := NoteStatus(s)
	if !isValidNoteStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// isValidNoteStatus checks if the given status is a valid NoteStatus.
func isValidNoteStatus(status NoteStatus) bool {
	switch status {
	case NoteStatusQueued, NoteStatusProcessing, NoteStatusDone, NoteStatusFailed:
		return true
	default:
		return false
	}
}
