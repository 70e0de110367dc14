package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/api/middleware"
	"github.com/kerrian/notely-api/internal/api/shared"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/service"
	"github.com/kerrian/notely-api/internal/store"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	noteService service.NoteService
	validator   *validator.Validate
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		validator:   validator.New(),
	}
}

// CreateNote handles POST /api/notes requests. Summarization happens
// asynchronously, so a successful creation returns 202 Accepted with the
// note in queued state. If the queue is unreachable the response is 503
// and the note, already persisted, is left in failed state.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	var req CreateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), user.ID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrQueueUnavailable) {
			HandleAPIError(w, r, err, "")
			return
		}
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, noteToResponse(note))
}

// GetNote handles GET /api/notes/{id} requests. Retrieval is scoped by the
// requester's role: agents only see their own notes.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid note ID")
		return
	}

	note, err := h.noteService.GetNote(r.Context(), noteID, user)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note))
}

// ListNotes handles GET /api/notes requests with optional filtering and
// pagination query parameters: page, size, search, status, created_after,
// created_before.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	page, err := parsePageParams(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	filters, err := parseFilterParams(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.noteService.ListNotes(r.Context(), user, page, filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notes")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteListToResponse(list))
}

// parsePageParams reads page and size query parameters. Both absent means
// no pagination; either present yields a normalized page.
func parsePageParams(r *http.Request) (*store.Page, error) {
	q := r.URL.Query()
	pageParam := q.Get("page")
	sizeParam := q.Get("size")

	if pageParam == "" && sizeParam == "" {
		return nil, nil
	}

	number := 1
	if pageParam != "" {
		n, err := strconv.Atoi(pageParam)
		if err != nil {
			return nil, errors.New("invalid page parameter")
		}
		number = n
	}

	size := store.DefaultPageSize
	if sizeParam != "" {
		s, err := strconv.Atoi(sizeParam)
		if err != nil {
			return nil, errors.New("invalid size parameter")
		}
		size = s
	}

	page := store.NewPage(number, size)
	return &page, nil
}

// parseFilterParams reads the search, status and creation date filters.
// Returns nil when no filters are set.
func parseFilterParams(r *http.Request) (*store.NoteFilters, error) {
	q := r.URL.Query()

	filters := store.NoteFilters{
		Search: q.Get("search"),
	}

	if statusParam := q.Get("status"); statusParam != "" {
		status, err := domain.ParseNoteStatus(statusParam)
		if err != nil {
			return nil, errors.New("invalid status parameter")
		}
		filters.Status = status
	}

	if after := q.Get("created_after"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			return nil, errors.New("invalid created_after parameter, expected RFC3339 timestamp")
		}
		filters.CreatedAfter = t
	}

	if before := q.Get("created_before"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return nil, errors.New("invalid created_before parameter, expected RFC3339 timestamp")
		}
		filters.CreatedBefore = t
	}

	if filters.IsZero() {
		return nil, nil
	}
	return &filters, nil
}
