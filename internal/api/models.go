package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`

	// Role is optional; unset defaults to AGENT.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN AGENT"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Role is the user's role as embedded in the issued tokens
	Role string `json:"role"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateNoteRequest represents the request body for creating a new note
type CreateNoteRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// NoteResponse represents the response data for a note
type NoteResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	RawText   string    `json:"raw_text"`
	Summary   string    `json:"summary,omitempty"`
	Status    string    `json:"status"`
	JobID     string    `json:"job_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse represents a page of notes with pagination bookkeeping
type NoteListResponse struct {
	Items []NoteResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

// noteToResponse converts a domain.Note to a NoteResponse
func noteToResponse(note *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID.String(),
		OwnerID:   note.OwnerID.String(),
		RawText:   note.RawText,
		Summary:   note.Summary,
		Status:    string(note.Status),
		JobID:     note.JobID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// noteListToResponse converts a service.NoteList to a NoteListResponse
func noteListToResponse(list *service.NoteList) NoteListResponse {
	items := make([]NoteResponse, 0, len(list.Items))
	for _, note := range list.Items {
		items = append(items, noteToResponse(note))
	}
	return NoteListResponse{
		Items: items,
		Total: list.Total,
		Page:  list.Page,
		Size:  list.Size,
		Pages: list.Pages,
	}
}
