package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryQueue_SubmitAndConsume(t *testing.T) {
	q := NewMemoryQueue(4, testLogger())
	noteID := uuid.New()

	jobID, err := q.Submit(context.Background(), TaskSummarizeNote, noteID)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	job := <-q.Jobs()
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, TaskSummarizeNote, job.Task)
	assert.Equal(t, noteID, job.NoteID)
}

func TestMemoryQueue_FullIsRejection(t *testing.T) {
	q := NewMemoryQueue(1, testLogger())

	_, err := q.Submit(context.Background(), TaskSummarizeNote, uuid.New())
	require.NoError(t, err)

	_, err = q.Submit(context.Background(), TaskSummarizeNote, uuid.New())
	assert.ErrorIs(t, err, ErrQueueFull)

	// A full queue is a rejection, not an outage.
	assert.False(t, IsUnavailable(err))
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1, testLogger())
	q.Close()

	_, err := q.Submit(context.Background(), TaskSummarizeNote, uuid.New())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice is a no-op.
	q.Close()
}

func TestMemoryQueue_ConsumeDeliversJobs(t *testing.T) {
	q := NewMemoryQueue(8, testLogger())

	var mu sync.Mutex
	var seen []Job

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Consume(ctx, func(ctx context.Context, job Job) error {
			mu.Lock()
			seen = append(seen, job)
			mu.Unlock()
			return nil
		})
	}()

	for i := 0; i < 3; i++ {
		_, err := q.Submit(context.Background(), TaskSummarizeNote, uuid.New())
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestMemoryQueue_ConsumeStopsOnClose(t *testing.T) {
	q := NewMemoryQueue(2, testLogger())

	_, err := q.Submit(context.Background(), TaskSummarizeNote, uuid.New())
	require.NoError(t, err)

	q.Close()

	// Buffered jobs are drained before Consume returns.
	var count int
	err = q.Consume(context.Background(), func(ctx context.Context, job Job) error {
		count++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(ErrUnavailable))
	assert.False(t, IsUnavailable(ErrQueueFull))
	assert.False(t, IsUnavailable(ErrQueueClosed))
	assert.False(t, IsUnavailable(nil))
}
