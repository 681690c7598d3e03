package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DailyQueue-specific validation errors
var (
	// ErrQueueIDEmpty is returned when a queue ID is empty or nil.
	ErrQueueIDEmpty = errors.New("daily queue ID cannot be empty")

	// ErrQueueUserIDEmpty is returned when a queue's user ID is empty or nil.
	ErrQueueUserIDEmpty = errors.New("daily queue user ID cannot be empty")

	// ErrQueueDateEmpty is returned when a queue's date is not set.
	ErrQueueDateEmpty = errors.New("daily queue date cannot be empty")

	// ErrQueueEmpty is returned when a queue is created without any words.
	ErrQueueEmpty = errors.New("daily queue must contain at least one word")
)

// DailyQueue is the locked review set for one user and one calendar date.
// The word list is fixed at creation time: repeated reads on the same day
// return the same set even as other words become due. Only the story
// field may be attached later.
type DailyQueue struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	QueueDate time.Time   `json:"queue_date"` // Calendar date, midnight UTC
	WordIDs   []uuid.UUID `json:"word_ids"`   // Ordered, immutable once persisted
	Story     string      `json:"story,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewDailyQueue creates a queue for the given user and date with the exact
// ordered word list. The date is truncated to midnight UTC.
// Returns an error if validation fails.
func NewDailyQueue(userID uuid.UUID, date time.Time, wordIDs []uuid.UUID) (*DailyQueue, error) {
	queue := &DailyQueue{
		ID:        uuid.New(),
		UserID:    userID,
		QueueDate: DateOf(date),
		WordIDs:   wordIDs,
		CreatedAt: time.Now().UTC(),
	}

	if err := queue.Validate(); err != nil {
		return nil, err
	}

	return queue, nil
}

// EmptyDailyQueue returns the unpersisted marker for a date with no
// reviewable words. It carries a Nil ID so callers can tell it apart from
// a locked queue; a later call on the same date may still create one.
func EmptyDailyQueue(userID uuid.UUID, date time.Time) *DailyQueue {
	return &DailyQueue{
		UserID:    userID,
		QueueDate: DateOf(date),
		WordIDs:   []uuid.UUID{},
	}
}

// IsEmpty reports whether the queue is the unpersisted empty marker.
func (q *DailyQueue) IsEmpty() bool {
	return len(q.WordIDs) == 0
}

// Validate checks if the DailyQueue has valid data.
// Returns an error if any field fails validation.
func (q *DailyQueue) Validate() error {
	if q.ID == uuid.Nil {
		return ErrQueueIDEmpty
	}

	if q.UserID == uuid.Nil {
		return ErrQueueUserIDEmpty
	}

	if q.QueueDate.IsZero() {
		return ErrQueueDateEmpty
	}

	if len(q.WordIDs) == 0 {
		return ErrQueueEmpty
	}

	return nil
}

// DateOf truncates a timestamp to its calendar date at midnight UTC.
// All queue uniqueness and the once-per-day review guard use this notion
// of "day".
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date
// in UTC.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
