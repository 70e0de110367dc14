package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerrian/notely-api/internal/api/shared"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/platform/memory"
	"github.com/kerrian/notely-api/internal/queue"
	"github.com/kerrian/notely-api/internal/service"
)

// brokenQueue simulates a queue whose transport is down.
type brokenQueue struct{}

func (brokenQueue) Submit(context.Context, string, uuid.UUID) (string, error) {
	return "", fmt.Errorf("dial amqp: %w", queue.ErrUnavailable)
}

// rejectingQueue simulates a reachable queue that refuses jobs.
type rejectingQueue struct{}

func (rejectingQueue) Submit(context.Context, string, uuid.UUID) (string, error) {
	return "", fmt.Errorf("publish: %w", queue.ErrQueueFull)
}

type noteHandlerEnv struct {
	handler *NoteHandler
	notes   *memory.NoteStore
	router  chi.Router
}

// newNoteHandlerEnv wires a note handler against in-memory storage and the
// given queue. The router injects user as the authenticated requester, the
// way the auth middleware would after validating a token.
func newNoteHandlerEnv(t *testing.T, jobs queue.JobQueue, user *domain.User) noteHandlerEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notes := memory.NewNoteStore()
	if jobs == nil {
		jobs = queue.NewMemoryQueue(16, logger)
	}

	noteService, err := service.NewNoteService(notes, jobs, logger)
	require.NoError(t, err)

	handler := NewNoteHandler(noteService)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserContextKey, user)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/notes", handler.CreateNote)
	r.Get("/api/notes", handler.ListNotes)
	r.Get("/api/notes/{id}", handler.GetNote)

	return noteHandlerEnv{handler: handler, notes: notes, router: r}
}

func agentUser() *domain.User {
	return &domain.User{ID: uuid.New(), Role: domain.RoleAgent}
}

func adminUser() *domain.User {
	return &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
}

// seedNote persists a note owned by ownerID directly through the store.
func seedNote(t *testing.T, notes *memory.NoteStore, ownerID uuid.UUID, text string) *domain.Note {
	t.Helper()
	note, err := domain.NewNote(ownerID, text)
	require.NoError(t, err)
	require.NoError(t, notes.Create(context.Background(), note))
	return note
}

func TestNoteHandler_CreateNote(t *testing.T) {
	t.Run("accepted with queued note", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)

		req := httptest.NewRequest(http.MethodPost, "/api/notes",
			strings.NewReader(`{"text":"urgent call with the vendor"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp NoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.ID.String(), resp.OwnerID)
		assert.Equal(t, "urgent call with the vendor", resp.RawText)
		assert.Equal(t, string(domain.NoteStatusQueued), resp.Status)
		assert.NotEmpty(t, resp.JobID)
		assert.Empty(t, resp.Summary)
	})

	t.Run("queue transport down yields 503 and a failed note", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, brokenQueue{}, user)

		req := httptest.NewRequest(http.MethodPost, "/api/notes",
			strings.NewReader(`{"text":"will not be summarized"}`))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		// The note is persisted despite the failed handoff.
		list, total, err := env.notes.List(context.Background(), user, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, domain.NoteStatusFailed, list[0].Status)
	})

	t.Run("queue rejection still returns the created note", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, rejectingQueue{}, user)

		req := httptest.NewRequest(http.MethodPost, "/api/notes",
			strings.NewReader(`{"text":"rejected by the broker"}`))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp NoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(domain.NoteStatusFailed), resp.Status)
		assert.Empty(t, resp.JobID)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"text":""}`))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodPost, "/api/notes", strings.NewReader(`{"text":`))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNoteHandler_GetNote(t *testing.T) {
	t.Run("owner retrieves own note", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		note := seedNote(t, env.notes, user.ID, "my note")

		req := httptest.NewRequest(http.MethodGet, "/api/notes/"+note.ID.String(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp NoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, note.ID.String(), resp.ID)
	})

	t.Run("agent cannot see another agent's note", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		other := seedNote(t, env.notes, uuid.New(), "someone else's note")

		req := httptest.NewRequest(http.MethodGet, "/api/notes/"+other.ID.String(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("admin sees any note", func(t *testing.T) {
		admin := adminUser()
		env := newNoteHandlerEnv(t, nil, admin)
		note := seedNote(t, env.notes, uuid.New(), "agent note")

		req := httptest.NewRequest(http.MethodGet, "/api/notes/"+note.ID.String(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid note ID", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodGet, "/api/notes/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("absent note ID", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodGet, "/api/notes/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNoteHandler_ListNotes(t *testing.T) {
	t.Run("paginated listing", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		for i := 0; i < 5; i++ {
			seedNote(t, env.notes, user.ID, fmt.Sprintf("note %d", i))
		}

		req := httptest.NewRequest(http.MethodGet, "/api/notes?page=1&size=2", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp NoteListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, 5, resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 2, resp.Size)
		assert.Equal(t, 3, resp.Pages)
	})

	t.Run("unpaginated listing returns everything", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		for i := 0; i < 3; i++ {
			seedNote(t, env.notes, user.ID, fmt.Sprintf("note %d", i))
		}

		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp NoteListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 3)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, resp.Pages)
		assert.Equal(t, 3, resp.Size)
	})

	t.Run("agent listing is scoped to own notes", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		seedNote(t, env.notes, user.ID, "mine")
		seedNote(t, env.notes, uuid.New(), "not mine")

		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp NoteListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "mine", resp.Items[0].RawText)
	})

	t.Run("status filter", func(t *testing.T) {
		user := agentUser()
		env := newNoteHandlerEnv(t, nil, user)
		done := seedNote(t, env.notes, user.ID, "finished work")
		seedNote(t, env.notes, user.ID, "still queued")
		_, err := env.notes.UpdateStatus(
			context.Background(), done.ID, domain.NoteStatusDone, "summary", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/notes?status=done", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp NoteListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, done.ID.String(), resp.Items[0].ID)
	})

	t.Run("invalid status parameter", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodGet, "/api/notes?status=archived", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid page parameter", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodGet, "/api/notes?page=abc", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid created_after parameter", func(t *testing.T) {
		env := newNoteHandlerEnv(t, nil, agentUser())

		req := httptest.NewRequest(http.MethodGet, "/api/notes?created_after=yesterday", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
