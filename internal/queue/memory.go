package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MemoryQueue is a buffered in-process JobQueue. It is used by tests and
// by single-process deployments where the worker runs alongside the API
// server and no broker is configured.
type MemoryQueue struct {
	jobs   chan Job
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewMemoryQueue creates a new in-process queue with the specified
// buffer size.
func NewMemoryQueue(size int, logger *slog.Logger) *MemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryQueue{
		jobs:   make(chan Job, size),
		logger: logger.With(slog.String("component", "memory_queue")),
	}
}

// Ensure MemoryQueue implements JobQueue
var _ JobQueue = (*MemoryQueue)(nil)

// Submit implements JobQueue.Submit
// Returns ErrQueueFull (a rejection, the queue itself is reachable) when
// the buffer is exhausted and ErrQueueClosed after Close.
func (q *MemoryQueue) Submit(ctx context.Context, task string, noteID uuid.UUID) (string, error) {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()

	if closed {
		return "", ErrQueueClosed
	}

	job := Job{
		ID:     uuid.New().String(),
		Task:   task,
		NoteID: noteID,
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			slog.String("job_id", job.ID),
			slog.String("task", task),
			slog.Int("queue_len", len(q.jobs)),
			slog.Int("queue_cap", cap(q.jobs)))
		return job.ID, nil
	default:
		return "", fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Jobs returns a read-only channel for consuming enqueued jobs.
func (q *MemoryQueue) Jobs() <-chan Job {
	return q.jobs
}

// Consume delivers jobs to the handler until the context is cancelled or
// the queue is closed and drained. Handler errors are logged only; the
// note's own status records the failure.
func (q *MemoryQueue) Consume(ctx context.Context, handler func(ctx context.Context, job Job) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-q.jobs:
			if !ok {
				return nil
			}
			if err := handler(ctx, job); err != nil {
				q.logger.Error("job handler failed",
					slog.String("error", err.Error()),
					slog.String("job_id", job.ID),
					slog.String("note_id", job.NoteID.String()))
			}
		}
	}
}

// Close closes the queue, preventing further submissions. Jobs already
// buffered remain consumable.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}
