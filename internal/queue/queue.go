// Package queue provides the job queue used to hand notes off to the
// summarization worker. The queue carries only (task, note ID) references;
// the database remains the source of truth for note state.
package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// TaskSummarizeNote is the task name for note summarization jobs.
const TaskSummarizeNote = "summarize_note"

// Common errors returned by queue implementations.
var (
	// ErrUnavailable indicates the queue transport itself is unreachable
	// (connection refused, channel closed). Callers treat this as a
	// retryable infrastructure failure, distinct from a job being
	// rejected by a reachable queue.
	ErrUnavailable = errors.New("job queue unavailable")

	// ErrQueueFull indicates a reachable queue refused the job because
	// its buffer is exhausted. This is a rejection-class error.
	ErrQueueFull = errors.New("job queue is full")

	// ErrQueueClosed indicates the queue has been shut down.
	ErrQueueClosed = errors.New("job queue is closed")
)

// Job is a unit of background work referencing a note.
type Job struct {
	ID     string    `json:"job_id"`
	Task   string    `json:"task"`
	NoteID uuid.UUID `json:"note_id"`
}

// JobQueue accepts summarization jobs for asynchronous processing.
// Implementations must deliver jobs at least once to a consumer.
type JobQueue interface {
	// Submit enqueues a job for the named task referencing the given
	// note and returns the assigned job identifier.
	// Returns an error wrapping ErrUnavailable when the transport is
	// unreachable; any other error means the queue rejected the job.
	Submit(ctx context.Context, task string, noteID uuid.UUID) (string, error)
}

// IsUnavailable reports whether the error is a connectivity-class
// failure of the queue transport.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
