package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
)

// QueueStore defines the interface for daily queue persistence.
//
// A daily queue row is the lock that keeps a user's review set stable for
// a calendar date. The store enforces at most one row per (user, date) at
// the constraint level; that constraint, not application locking, is the
// correctness mechanism for concurrent queue creation.
type QueueStore interface {
	// Create persists a new daily queue with its exact ordered word list.
	// Returns ErrQueueExists if a queue already exists for the same user
	// and date; callers are expected to treat that as "lost the race"
	// and re-read the existing queue.
	Create(ctx context.Context, queue *domain.DailyQueue) error

	// FindByDate retrieves the queue for the given user and calendar
	// date. Returns ErrQueueNotFound if no queue has been created yet.
	FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyQueue, error)

	// AttachStory sets the generated story text on an existing queue.
	// The word list is never touched. Returns ErrQueueNotFound if the
	// queue does not exist.
	AttachStory(ctx context.Context, id uuid.UUID, story string) error

	// WithTx returns a new QueueStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) QueueStore
}
