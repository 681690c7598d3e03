package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Word-specific validation errors
var (
	// ErrWordIDEmpty is returned when a word ID is empty or nil.
	ErrWordIDEmpty = errors.New("word ID cannot be empty")

	// ErrWordUserIDEmpty is returned when a word's user ID is empty or nil.
	ErrWordUserIDEmpty = errors.New("word user ID cannot be empty")

	// ErrWordTermEmpty is returned when a word's term is empty.
	ErrWordTermEmpty = errors.New("word term cannot be empty")

	// ErrWordContentInvalid is returned when a word's content is not valid JSON.
	ErrWordContentInvalid = errors.New("word content must be valid JSON")
)

// Word represents a vocabulary entry a user is learning, together with its
// spaced-repetition memory state. The content is stored as a JSONB
// structure (dictionary entry, example sentences, translations) and is
// opaque to the scheduler.
type Word struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Term      string          `json:"term"`
	Content   json.RawMessage `json:"content"`
	Review    ReviewState     `json:"review"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWord creates a new Word owned by the given user.
// The word starts in the New state and is due for review immediately.
// Returns an error if validation fails.
func NewWord(userID uuid.UUID, term string, content json.RawMessage) (*Word, error) {
	now := time.Now().UTC()
	word := &Word{
		ID:        uuid.New(),
		UserID:    userID,
		Term:      term,
		Content:   content,
		Review:    NewReviewState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}

	return word, nil
}

// Validate checks if the Word has valid data.
// Returns an error if any field fails validation.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWordIDEmpty
	}

	if w.UserID == uuid.Nil {
		return ErrWordUserIDEmpty
	}

	if w.Term == "" {
		return ErrWordTermEmpty
	}

	// Content is optional, but must be valid JSON when present.
	if len(w.Content) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(w.Content, &js); err != nil {
			return ErrWordContentInvalid
		}
	}

	return w.Review.Validate()
}
