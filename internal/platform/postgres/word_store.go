package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/store"
)

// PostgresWordStore implements the store.WordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStore creates a new PostgreSQL implementation of the
// WordStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordStore(db store.DBTX, logger *slog.Logger) *PostgresWordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

// Ensure PostgresWordStore implements store.WordStore interface
var _ store.WordStore = (*PostgresWordStore)(nil)

const wordColumns = `id, user_id, term, content, stability, difficulty,
	repetitions, elapsed_days, scheduled_days, last_reviewed_at, due_at,
	state, created_at, updated_at`

// Create implements store.WordStore.Create
// It saves a new word to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign
// key violation).
func (s *PostgresWordStore) Create(ctx context.Context, word *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		log.Warn("word validation failed during create",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()))
		return err
	}

	query := `
		INSERT INTO words (` + wordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		word.ID,
		word.UserID,
		word.Term,
		[]byte(word.Content),
		word.Review.Stability,
		word.Review.Difficulty,
		word.Review.Repetitions,
		word.Review.ElapsedDays,
		word.Review.ScheduledDays,
		nullableTime(word.Review.LastReviewedAt),
		word.Review.DueAt,
		word.Review.State,
		word.CreatedAt,
		word.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during word creation",
				slog.String("error", err.Error()),
				slog.String("word_id", word.ID.String()),
				slog.String("user_id", word.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, word.UserID)
		}
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}

		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("word_id", word.ID.String()),
			slog.String("user_id", word.UserID.String()))
		return err
	}

	log.Info("word created successfully",
		slog.String("word_id", word.ID.String()),
		slog.String("user_id", word.UserID.String()),
		slog.String("term", word.Term))
	return nil
}

// GetByID implements store.WordStore.GetByID
// It retrieves a word by its unique ID.
// Returns store.ErrWordNotFound if the word does not exist.
func (s *PostgresWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + wordColumns + `
		FROM words
		WHERE id = $1
	`

	word, err := scanWord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("word not found", slog.String("word_id", id.String()))
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word by ID",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return nil, err
	}

	return word, nil
}

// ListByIDs implements store.WordStore.ListByIDs
// Words come back in the order the IDs are listed; IDs without a
// matching row are skipped.
func (s *PostgresWordStore) ListByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return []*domain.Word{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `
		SELECT ` + wordColumns + `
		FROM words
		WHERE id IN (` + strings.Join(placeholders, ", ") + `)
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query words by IDs",
			slog.String("error", err.Error()),
			slog.Int("id_count", len(ids)))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	byID := make(map[uuid.UUID]*domain.Word, len(ids))
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			log.Error("failed to scan word row",
				slog.String("error", err.Error()))
			return nil, err
		}
		byID[word.ID] = word
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	words := make([]*domain.Word, 0, len(ids))
	for _, id := range ids {
		if word, ok := byID[id]; ok {
			words = append(words, word)
		}
	}

	return words, nil
}

// FindDueOrNew implements store.WordStore.FindDueOrNew
// Due words come first, ordered by ascending due date; never-reviewed
// words backfill the remainder in creation order.
func (s *PostgresWordStore) FindDueOrNew(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT ` + wordColumns + `
		FROM words
		WHERE user_id = $1 AND (due_at <= $2 OR repetitions = 0)
		ORDER BY (repetitions = 0) ASC, due_at ASC, created_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now, limit)
	if err != nil {
		log.Error("failed to query due words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	words := []*domain.Word{}
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			log.Error("failed to scan word row",
				slog.String("error", err.Error()))
			return nil, err
		}
		words = append(words, word)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found due or new words",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(words)))
	return words, nil
}

// UpdateReviewState implements store.WordStore.UpdateReviewState
// The WHERE clause compares the stored last_reviewed_at against the
// caller's expected value, so a concurrent review that already moved the
// schedule makes this update miss. A miss on an existing word is reported
// as store.ErrConflict.
func (s *PostgresWordStore) UpdateReviewState(
	ctx context.Context,
	id uuid.UUID,
	state domain.ReviewState,
	prevReviewedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return err
	}

	query := `
		UPDATE words
		SET stability = $1, difficulty = $2, repetitions = $3,
			elapsed_days = $4, scheduled_days = $5, last_reviewed_at = $6,
			due_at = $7, state = $8, updated_at = $9
		WHERE id = $10 AND last_reviewed_at IS NOT DISTINCT FROM $11
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		state.Stability,
		state.Difficulty,
		state.Repetitions,
		state.ElapsedDays,
		state.ScheduledDays,
		nullableTime(state.LastReviewedAt),
		state.DueAt,
		state.State,
		time.Now().UTC(),
		id,
		nullableTime(prevReviewedAt),
	)
	if err != nil {
		log.Error("failed to update review state",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("word_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		// Either the word is gone or another review won the swap.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM words WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			log.Error("failed to check word existence",
				slog.String("error", err.Error()),
				slog.String("word_id", id.String()))
			return err
		}
		if !exists {
			return store.ErrWordNotFound
		}
		log.Debug("review state update lost compare-and-swap",
			slog.String("word_id", id.String()))
		return store.ErrConflict
	}

	log.Info("review state updated successfully",
		slog.String("word_id", id.String()),
		slog.String("state", string(state.State)),
		slog.Int("scheduled_days", state.ScheduledDays))
	return nil
}

// WithTx implements store.WordStore.WithTx
func (s *PostgresWordStore) WithTx(tx *sql.Tx) store.WordStore {
	return &PostgresWordStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*domain.Word, error) {
	var word domain.Word
	var content []byte
	var lastReviewedAt sql.NullTime
	var state string

	err := row.Scan(
		&word.ID,
		&word.UserID,
		&word.Term,
		&content,
		&word.Review.Stability,
		&word.Review.Difficulty,
		&word.Review.Repetitions,
		&word.Review.ElapsedDays,
		&word.Review.ScheduledDays,
		&lastReviewedAt,
		&word.Review.DueAt,
		&state,
		&word.CreatedAt,
		&word.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	word.Content = content
	if lastReviewedAt.Valid {
		word.Review.LastReviewedAt = lastReviewedAt.Time
	}
	word.Review.State = domain.CardState(state)

	return &word, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
