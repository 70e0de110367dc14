package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNote(t *testing.T) {
	ownerID := uuid.New()

	note, err := NewNote(ownerID, "remember to water the plants")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, ownerID, note.OwnerID)
	assert.Equal(t, "remember to water the plants", note.RawText)
	assert.Equal(t, NoteStatusQueued, note.Status)
	assert.Empty(t, note.Summary)
	assert.Empty(t, note.JobID)
	assert.False(t, note.CreatedAt.IsZero())
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
}

func TestNewNote_Validation(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		_, err := NewNote(uuid.New(), "")
		assert.ErrorIs(t, err, ErrEmptyNoteText)
	})

	t.Run("empty owner", func(t *testing.T) {
		_, err := NewNote(uuid.Nil, "some text")
		assert.ErrorIs(t, err, ErrEmptyNoteOwnerID)
	})
}

func TestNoteValidate(t *testing.T) {
	valid := func() *Note {
		return &Note{
			ID:      uuid.New(),
			OwnerID: uuid.New(),
			RawText: "text",
			Status:  NoteStatusQueued,
		}
	}

	t.Run("valid note", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing ID", func(t *testing.T) {
		note := valid()
		note.ID = uuid.Nil
		assert.ErrorIs(t, note.Validate(), ErrEmptyNoteID)
	})

	t.Run("invalid status", func(t *testing.T) {
		note := valid()
		note.Status = "archived"
		assert.ErrorIs(t, note.Validate(), ErrInvalidStatus)
	})
}

func TestParseNoteStatus(t *testing.T) {
	for _, s := range []string{"queued", "processing", "done", "failed"} {
		status, err := ParseNoteStatus(s)
		require.NoError(t, err)
		assert.Equal(t, NoteStatus(s), status)
	}

	_, err := ParseNoteStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseNoteStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
