package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
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

	// Token is the JWT token used for API authorization
	Token string `json:"token"`
}

// CreateWordRequest defines the payload for saving a new word.
type CreateWordRequest struct {
	Term    string          `json:"term"              validate:"required,min=1,max=200"`
	Content json.RawMessage `json:"content,omitempty"`
}

// WordResponse is the API representation of a word and its review state.
type WordResponse struct {
	ID            uuid.UUID       `json:"id"`
	Term          string          `json:"term"`
	Content       json.RawMessage `json:"content,omitempty"`
	State         string          `json:"state"`
	Repetitions   int             `json:"repetitions"`
	ScheduledDays int             `json:"scheduled_days"`
	DueAt         time.Time       `json:"due_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewWordResponse maps a domain word to its API representation.
func NewWordResponse(word *domain.Word) WordResponse {
	return WordResponse{
		ID:            word.ID,
		Term:          word.Term,
		Content:       word.Content,
		State:         string(word.Review.State),
		Repetitions:   word.Review.Repetitions,
		ScheduledDays: word.Review.ScheduledDays,
		DueAt:         word.Review.DueAt,
		CreatedAt:     word.CreatedAt,
	}
}

// DailyQueueResponse defines the response for the daily queue endpoint.
type DailyQueueResponse struct {
	QueueDate time.Time      `json:"queue_date"`
	Locked    bool           `json:"locked"`
	Words     []WordResponse `json:"words"`
	Story     string         `json:"story,omitempty"`
}

// SubmitReviewRequest defines the payload for submitting a review rating.
type SubmitReviewRequest struct {
	Rating string `json:"rating" validate:"required"`
}

// SubmitReviewResponse defines the response for a processed review.
type SubmitReviewResponse struct {
	WordID        uuid.UUID `json:"word_id"`
	Rating        string    `json:"rating"`
	State         string    `json:"state"`
	Repetitions   int       `json:"repetitions"`
	ScheduledDays int       `json:"scheduled_days"`
	DueAt         time.Time `json:"due_at"`
}
