package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/queue"
	"github.com/kerrian/notely-api/internal/store"
)

// NoteService provides note-related operations
type NoteService interface {
	// CreateNote creates a new note and enqueues it for summarization.
	// The returned note carries status queued on success. If the queue is
	// unreachable the note is forced to failed and ErrQueueUnavailable is
	// returned; if the queue merely rejects the job the note is forced to
	// failed but the creation still succeeds.
	CreateNote(ctx context.Context, ownerID uuid.UUID, rawText string) (*domain.Note, error)

	// GetNote retrieves a note by its ID, scoped to the requester's role.
	GetNote(ctx context.Context, noteID uuid.UUID, requester *domain.User) (*domain.Note, error)

	// ListNotes retrieves notes visible to the requester, optionally
	// filtered and paginated. A nil page returns everything in one page.
	ListNotes(
		ctx context.Context,
		requester *domain.User,
		page *store.Page,
		filters *store.NoteFilters,
	) (*NoteList, error)
}

// NoteList is a page of notes together with pagination bookkeeping.
type NoteList struct {
	Items []*domain.Note `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

// noteServiceImpl implements the NoteService interface
type noteServiceImpl struct {
	notes  store.NoteStore
	jobs   queue.JobQueue
	logger *slog.Logger
}

// NewNoteService creates a new NoteService.
// It returns an error if any of the required dependencies are nil.
func NewNoteService(
	notes store.NoteStore,
	jobs queue.JobQueue,
	logger *slog.Logger,
) (NoteService, error) {
	if notes == nil {
		return nil, &NoteServiceError{
			Operation: "create_service",
			Message:   "note store cannot be nil",
		}
	}
	if jobs == nil {
		return nil, &NoteServiceError{
			Operation: "create_service",
			Message:   "job queue cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &noteServiceImpl{
		notes:  notes,
		jobs:   jobs,
		logger: logger.With("component", "note_service"),
	}, nil
}

// CreateNote persists a new note and hands it to the summarization queue.
//
// The persisted note is the durable record: once creation succeeds, every
// later failure is reflected in the note's status rather than by undoing
// the creation. Only an unreachable queue is surfaced to the caller.
func (s *noteServiceImpl) CreateNote(
	ctx context.Context,
	ownerID uuid.UUID,
	rawText string,
) (*domain.Note, error) {
	note, err := domain.NewNote(ownerID, rawText)
	if err != nil {
		s.logger.Error("failed to create note object",
			"error", err,
			"owner_id", ownerID)
		return nil, NewNoteServiceError("create_note", "failed to create note object", err)
	}

	if err := s.notes.Create(ctx, note); err != nil {
		s.logger.Error("failed to save note",
			"error", err,
			"owner_id", ownerID,
			"note_id", note.ID)
		return nil, NewNoteServiceError("create_note", "failed to save note to database", err)
	}

	s.logger.Info("note created with queued status",
		"note_id", note.ID,
		"owner_id", ownerID)

	jobID, err := s.jobs.Submit(ctx, queue.TaskSummarizeNote, note.ID)
	if err != nil {
		if queue.IsUnavailable(err) {
			s.logger.Error("summarization queue unavailable",
				"error", err,
				"note_id", note.ID)
			s.forceFailed(ctx, note)
			return nil, ErrQueueUnavailable
		}

		// The queue is reachable but rejected the job. The note stays
		// created; its failed status is the caller's signal.
		s.logger.Error("summarization job rejected",
			"error", err,
			"note_id", note.ID)
		s.forceFailed(ctx, note)
		return note, nil
	}

	// Record the job ID on the note. This is bookkeeping: the job is
	// already in flight, so a failure here must not fail the request.
	updated, err := s.notes.UpdateStatus(ctx, note.ID, domain.NoteStatusQueued, "", jobID)
	if err != nil {
		s.logger.Error("failed to record job id on note",
			"error", err,
			"note_id", note.ID,
			"job_id", jobID)
		return note, nil
	}

	s.logger.Info("summarization job enqueued",
		"note_id", note.ID,
		"job_id", jobID)

	return updated, nil
}

// forceFailed marks the note failed after an enqueue problem. Best-effort:
// a failure here is logged and swallowed, leaving the note queued.
func (s *noteServiceImpl) forceFailed(ctx context.Context, note *domain.Note) {
	updated, err := s.notes.UpdateStatus(ctx, note.ID, domain.NoteStatusFailed, "", "")
	if err != nil {
		s.logger.Error("failed to mark note failed after enqueue error",
			"error", err,
			"note_id", note.ID)
		return
	}
	*note = *updated
}

// GetNote retrieves a note by its ID. Scoping follows the requester's
// role: admins see every note, agents only their own.
func (s *noteServiceImpl) GetNote(
	ctx context.Context,
	noteID uuid.UUID,
	requester *domain.User,
) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID, requester)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			s.logger.Debug("note not found or not visible",
				"note_id", noteID,
				"requester_id", requester.ID)
			return nil, ErrNoteNotFound
		}
		s.logger.Error("failed to retrieve note",
			"error", err,
			"note_id", noteID)
		return nil, NewNoteServiceError("get_note", "failed to retrieve note", err)
	}

	return note, nil
}

// ListNotes retrieves the requester-visible notes with filtering and
// pagination applied in the store.
func (s *noteServiceImpl) ListNotes(
	ctx context.Context,
	requester *domain.User,
	page *store.Page,
	filters *store.NoteFilters,
) (*NoteList, error) {
	items, total, err := s.notes.List(ctx, requester, page, filters)
	if err != nil {
		s.logger.Error("failed to list notes",
			"error", err,
			"requester_id", requester.ID)
		return nil, NewNoteServiceError("list_notes", "failed to list notes", err)
	}

	list := &NoteList{
		Items: items,
		Total: total,
	}

	if page == nil {
		// Unpaginated: everything in a single page sized to the result.
		list.Page = 1
		list.Size = total
		list.Pages = 1
		return list, nil
	}

	list.Page = page.Number
	list.Size = page.Size
	list.Pages = (total + page.Size - 1) / page.Size
	return list, nil
}
