package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// SummarizationQueueName is the durable queue summarization jobs are
// published to and consumed from.
const SummarizationQueueName = "summarization"

// publishTimeout bounds a single publish so a wedged broker cannot stall
// note creation indefinitely.
const publishTimeout = 5 * time.Second

// AMQPQueue is a RabbitMQ-backed JobQueue. The connection is established
// once at process start and passed by reference wherever a queue handle
// is needed; it is closed at process exit.
type AMQPQueue struct {
	url    string
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// NewAMQPQueue dials RabbitMQ, opens a channel and declares the durable
// summarization queue. Returns an error wrapping ErrUnavailable if the
// broker cannot be reached.
func NewAMQPQueue(ctx context.Context, url string, logger *slog.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	q := &AMQPQueue{
		url:    url,
		logger: logger.With(slog.String("component", "amqp_queue")),
	}

	if err := q.connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	q.logger.Info("connected to job queue broker",
		slog.String("queue", SummarizationQueueName))
	return q, nil
}

// Ensure AMQPQueue implements JobQueue
var _ JobQueue = (*AMQPQueue)(nil)

func (q *AMQPQueue) connect() error {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	// One queue, durable, at-least-once delivery to the worker.
	if _, err := ch.QueueDeclare(
		SummarizationQueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}

	q.mu.Lock()
	q.conn = conn
	q.ch = ch
	q.mu.Unlock()
	return nil
}

// Submit implements JobQueue.Submit
// It publishes a persistent JSON job message and returns the generated
// job identifier.
func (q *AMQPQueue) Submit(ctx context.Context, task string, noteID uuid.UUID) (string, error) {
	q.mu.RLock()
	ch := q.ch
	conn := q.conn
	closed := q.closed
	q.mu.RUnlock()

	if closed || ch == nil || conn == nil || conn.IsClosed() {
		return "", fmt.Errorf("%w: broker connection not available", ErrUnavailable)
	}

	job := Job{
		ID:     uuid.New().String(),
		Task:   task,
		NoteID: noteID,
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		publishCtx,
		"",                     // default exchange
		SummarizationQueueName, // routing key
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		if isConnectivityError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		// Broker reached but the publish was refused.
		return "", fmt.Errorf("publish job: %w", err)
	}

	q.logger.Debug("job published",
		slog.String("job_id", job.ID),
		slog.String("task", task),
		slog.String("note_id", noteID.String()))
	return job.ID, nil
}

// Consume delivers jobs from the summarization queue to the handler until
// the context is cancelled. Deliveries are acknowledged after the handler
// returns regardless of its error: a failed note carries its own durable
// "failed" status, so redelivering the job would only loop.
func (q *AMQPQueue) Consume(ctx context.Context, handler func(ctx context.Context, job Job) error) error {
	q.mu.RLock()
	ch := q.ch
	q.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("%w: broker channel not available", ErrUnavailable)
	}

	deliveries, err := ch.Consume(
		SummarizationQueueName,
		"",    // consumer tag, auto-generated
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("%w: start consuming: %v", ErrUnavailable, err)
	}

	q.logger.Info("consuming jobs", slog.String("queue", SummarizationQueueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%w: delivery channel closed", ErrUnavailable)
			}

			var job Job
			if err := json.Unmarshal(delivery.Body, &job); err != nil {
				q.logger.Error("discarding malformed job message",
					slog.String("error", err.Error()),
					slog.String("message_id", delivery.MessageId))
				_ = delivery.Ack(false)
				continue
			}

			if err := handler(ctx, job); err != nil {
				q.logger.Error("job handler failed",
					slog.String("error", err.Error()),
					slog.String("job_id", job.ID),
					slog.String("note_id", job.NoteID.String()))
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close shuts down the channel and connection.
func (q *AMQPQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
	q.logger.Info("job queue connection closed")
}

// isConnectivityError classifies transport-level AMQP failures as
// connectivity problems rather than job rejections.
func isConnectivityError(err error) bool {
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		// Connection- and channel-level errors close the transport.
		return amqpErr.Code == amqp.ConnectionForced ||
			amqpErr.Code == amqp.ChannelError ||
			amqpErr.Code == amqp.ResourceError
	}

	return false
}
