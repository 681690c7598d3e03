package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
)

// WordStore defines the interface for word data persistence.
type WordStore interface {
	// Create saves a new word to the store.
	// All fields must be valid according to domain validation rules.
	// Returns ErrDuplicate if a word with the same ID already exists.
	Create(ctx context.Context, word *domain.Word) error

	// GetByID retrieves a word by its unique ID.
	// Returns ErrWordNotFound if the word does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)

	// ListByIDs retrieves the words with the given IDs, in the order the
	// IDs are listed. IDs that do not resolve to a word are skipped.
	// Returns an empty slice for an empty ID list.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Word, error)

	// FindDueOrNew retrieves up to limit words for the given user that
	// are due for review (due_at <= now) or have never been reviewed
	// (repetitions == 0). Due words come first, ordered by ascending
	// due date; never-reviewed words backfill the remainder in creation
	// order. Returns an empty slice when nothing qualifies.
	FindDueOrNew(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Word, error)

	// UpdateReviewState persists a word's new memory state.
	//
	// The update is a compare-and-swap on the previous last-reviewed
	// timestamp: it only applies while the stored last_reviewed_at still
	// equals prevReviewedAt (zero meaning never reviewed). If a
	// concurrent review won the race the swap misses and ErrConflict is
	// returned; the stored state is left exactly as the winner wrote it.
	// Returns ErrWordNotFound if the word does not exist.
	UpdateReviewState(
		ctx context.Context,
		id uuid.UUID,
		state domain.ReviewState,
		prevReviewedAt time.Time,
	) error

	// WithTx returns a new WordStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) WordStore
}
