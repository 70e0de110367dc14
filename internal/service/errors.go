package service

import (
	"errors"
	"fmt"

	"github.com/kerrian/notely-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNoteNotFound indicates the note does not exist, or exists but is
	// not visible to the requesting user. The two cases are deliberately
	// indistinguishable. API layer maps this to HTTP 404 Not Found.
	ErrNoteNotFound = errors.New("note not found")

	// ErrUserNotFound indicates the user does not exist.
	// API layer maps this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates a registration attempt with an email that is
	// already taken. API layer maps this to HTTP 409 Conflict.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates a login attempt with a wrong email or
	// password. API layer maps this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrQueueUnavailable indicates the job queue could not be reached when
	// enqueueing a note for summarization. The note, if created, was forced
	// to failed status. API layer maps this to HTTP 503 Service Unavailable.
	ErrQueueUnavailable = errors.New("summarization queue unavailable")
)

// NoteServiceError wraps errors from the note service with context.
type NoteServiceError struct {
	// Operation is the operation that failed (e.g., "create_note", "list_notes")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for NoteServiceError.
func (e *NoteServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("note service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("note service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *NoteServiceError) Unwrap() error {
	return e.Err
}

// NewNoteServiceError creates a new NoteServiceError.
// It returns known sentinel errors directly without wrapping.
func NewNoteServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNoteNotFound) || errors.Is(err, ErrQueueUnavailable) {
		return err
	}

	// Map store-level sentinels to service-level ones
	if errors.Is(err, store.ErrNoteNotFound) {
		return ErrNoteNotFound
	}

	return &NoteServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
