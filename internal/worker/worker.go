package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/queue"
	"github.com/kerrian/notely-api/internal/store"
)

// Common construction errors
var (
	ErrNilNoteStore  = errors.New("note store cannot be nil")
	ErrNilSummarizer = errors.New("summarizer cannot be nil")
)

// Worker processes summarization jobs. It shares no memory with the API
// server: all coordination happens through the note store (source of
// truth) and the job queue (signaling).
type Worker struct {
	notes      store.NoteStore
	summarizer Summarizer
	logger     *slog.Logger
}

// New creates a Worker. Returns an error if a required dependency is nil.
func New(notes store.NoteStore, summarizer Summarizer, logger *slog.Logger) (*Worker, error) {
	if notes == nil {
		return nil, ErrNilNoteStore
	}
	if summarizer == nil {
		return nil, ErrNilSummarizer
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		notes:      notes,
		summarizer: summarizer,
		logger:     logger.With(slog.String("component", "summarization_worker")),
	}, nil
}

// HandleJob is the queue consumer entrypoint. Unknown task names are
// logged and dropped; at-least-once delivery means a job may arrive more
// than once, which is harmless because every write is an idempotent
// overwrite.
func (w *Worker) HandleJob(ctx context.Context, job queue.Job) error {
	if job.Task != queue.TaskSummarizeNote {
		w.logger.Warn("ignoring job with unknown task",
			slog.String("task", job.Task),
			slog.String("job_id", job.ID))
		return nil
	}

	return w.ProcessNote(ctx, job.NoteID)
}

// ProcessNote runs the summarization state machine for a single note:
//
//	load → processing (committed before the slow computation) →
//	summarize → done, or failed on any error along the way.
//
// A missing note aborts silently. Failures after the load force the note
// to failed on a best-effort basis; if even that write fails, the error
// is logged and discarded so the worker never crashes over bookkeeping.
func (w *Worker) ProcessNote(ctx context.Context, noteID uuid.UUID) error {
	log := w.logger.With(slog.String("note_id", noteID.String()))
	log.Info("starting summarization")

	note, err := w.notes.Get(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			// The job references a note that no longer exists. Drop it.
			log.Error("note not found, dropping job")
			return nil
		}
		return fmt.Errorf("failed to load note: %w", err)
	}

	// Commit the processing transition before the (potentially slow)
	// summarization so concurrent readers observe it.
	if _, err := w.notes.UpdateStatus(ctx, noteID, domain.NoteStatusProcessing, "", ""); err != nil {
		w.markFailed(ctx, noteID)
		return fmt.Errorf("failed to mark note processing: %w", err)
	}

	summary, err := w.summarizer.Summarize(ctx, note.RawText)
	if err != nil {
		log.Error("summarization failed", slog.String("error", err.Error()))
		w.markFailed(ctx, noteID)
		return fmt.Errorf("failed to summarize note: %w", err)
	}

	if _, err := w.notes.UpdateStatus(ctx, noteID, domain.NoteStatusDone, summary, ""); err != nil {
		log.Error("failed to store summary", slog.String("error", err.Error()))
		w.markFailed(ctx, noteID)
		return fmt.Errorf("failed to store summary: %w", err)
	}

	log.Info("summarization completed")
	return nil
}

// markFailed is the best-effort recovery write: re-load the note (it may
// have changed, or vanished) and force its status to failed. Failures
// here are logged and swallowed.
func (w *Worker) markFailed(ctx context.Context, noteID uuid.UUID) {
	log := w.logger.With(slog.String("note_id", noteID.String()))

	if _, err := w.notes.Get(ctx, noteID); err != nil {
		log.Error("cannot mark note failed",
			slog.String("error", err.Error()))
		return
	}

	if _, err := w.notes.UpdateStatus(ctx, noteID, domain.NoteStatusFailed, "", ""); err != nil {
		log.Error("failed to mark note failed",
			slog.String("error", err.Error()))
	}
}
