// Package review implements the daily review workflow: building and
// locking the queue of words to study on a given date, and applying
// rating submissions to word memory state.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
)

// DailyQueueView is a daily queue joined with its word records, in queue
// order. For a date with no reviewable words, Queue is the unpersisted
// empty marker and Words is empty.
type DailyQueueView struct {
	Queue *domain.DailyQueue
	Words []*domain.Word
}

// ReviewSummary is the outcome of a rating submission.
type ReviewSummary struct {
	WordID uuid.UUID          `json:"word_id"`
	Rating domain.Rating      `json:"rating"`
	Review domain.ReviewState `json:"review"`
}

// ReviewService provides the daily review workflow.
type ReviewService interface {
	// GetDailyQueue returns the review queue for the user's calendar date
	// at now, creating and locking it on first call. Once locked, repeated
	// calls on the same date return the identical word list even as other
	// words become due. Concurrent first calls converge on a single queue.
	//
	// When nothing is due and nothing is new, the returned view carries
	// the unpersisted empty marker; a later call on the same date may
	// still lock a queue.
	GetDailyQueue(ctx context.Context, userID uuid.UUID, now time.Time) (*DailyQueueView, error)

	// SubmitReview applies a rating to the given word at time now and
	// persists the new memory state.
	//
	// Returns ErrWordNotFound if the word does not exist, ErrWordNotOwned
	// if it belongs to another user, ErrInvalidRating for an unsupported
	// rating, and ErrAlreadyReviewedToday if the word was already reviewed
	// on the same calendar date (including losing a race to a concurrent
	// submission).
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		wordID uuid.UUID,
		rating domain.Rating,
		now time.Time,
	) (*ReviewSummary, error)
}

// Common error types for ReviewService
var (
	// ErrWordNotFound indicates that the word does not exist.
	ErrWordNotFound = errors.New("word not found")

	// ErrWordNotOwned indicates that the user does not own the word.
	ErrWordNotOwned = errors.New("unauthorized access: word not owned by user")

	// ErrInvalidRating indicates an unsupported rating value.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrAlreadyReviewedToday indicates the word was already reviewed on
	// the same calendar date, so the schedule was left unchanged.
	ErrAlreadyReviewedToday = errors.New("word already reviewed today")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_daily_queue")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGetDailyQueueError returns a new ServiceError for the get_daily_queue operation.
func NewGetDailyQueueError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_daily_queue",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}
