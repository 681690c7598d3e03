package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/store"
)

// PostgresQueueStore implements the store.QueueStore interface
// using a PostgreSQL database as the storage backend.
//
// The daily_queues table carries a unique constraint on
// (user_id, queue_date); that constraint is what makes concurrent
// get-or-create calls converge on a single queue row.
type PostgresQueueStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQueueStore creates a new PostgreSQL implementation of the
// QueueStore interface. If logger is nil, a default logger will be used.
func NewPostgresQueueStore(db store.DBTX, logger *slog.Logger) *PostgresQueueStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQueueStore{
		db:     db,
		logger: logger.With(slog.String("component", "queue_store")),
	}
}

// Ensure PostgresQueueStore implements store.QueueStore interface
var _ store.QueueStore = (*PostgresQueueStore)(nil)

// Create implements store.QueueStore.Create
// Returns store.ErrQueueExists when a queue for the same user and date
// was inserted concurrently; callers re-read the winner instead of
// surfacing the violation.
func (s *PostgresQueueStore) Create(ctx context.Context, queue *domain.DailyQueue) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := queue.Validate(); err != nil {
		log.Warn("queue validation failed during create",
			slog.String("error", err.Error()),
			slog.String("queue_id", queue.ID.String()))
		return err
	}

	wordIDs, err := json.Marshal(queue.WordIDs)
	if err != nil {
		return fmt.Errorf("failed to encode word IDs: %w", err)
	}

	query := `
		INSERT INTO daily_queues (id, user_id, queue_date, word_ids, story, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		queue.ID,
		queue.UserID,
		queueDateArg(queue.QueueDate),
		wordIDs,
		nullableString(queue.Story),
		queue.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("daily queue already exists for date",
				slog.String("user_id", queue.UserID.String()),
				slog.Time("queue_date", queue.QueueDate))
			return store.ErrQueueExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, queue.UserID)
		}

		log.Error("failed to create daily queue",
			slog.String("error", err.Error()),
			slog.String("queue_id", queue.ID.String()),
			slog.String("user_id", queue.UserID.String()))
		return err
	}

	log.Info("daily queue created successfully",
		slog.String("queue_id", queue.ID.String()),
		slog.String("user_id", queue.UserID.String()),
		slog.Time("queue_date", queue.QueueDate),
		slog.Int("word_count", len(queue.WordIDs)))
	return nil
}

// FindByDate implements store.QueueStore.FindByDate
// Returns store.ErrQueueNotFound if no queue exists for the date.
func (s *PostgresQueueStore) FindByDate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*domain.DailyQueue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, queue_date, word_ids, story, created_at
		FROM daily_queues
		WHERE user_id = $1 AND queue_date = $2
	`

	var queue domain.DailyQueue
	var wordIDs []byte
	var story sql.NullString

	err := s.db.QueryRowContext(ctx, query, userID, queueDateArg(date)).Scan(
		&queue.ID,
		&queue.UserID,
		&queue.QueueDate,
		&wordIDs,
		&story,
		&queue.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("daily queue not found",
				slog.String("user_id", userID.String()),
				slog.Time("queue_date", domain.DateOf(date)))
			return nil, store.ErrQueueNotFound
		}
		log.Error("failed to get daily queue",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	if err := json.Unmarshal(wordIDs, &queue.WordIDs); err != nil {
		return nil, fmt.Errorf("failed to decode word IDs: %w", err)
	}
	queue.Story = story.String

	return &queue, nil
}

// AttachStory implements store.QueueStore.AttachStory
// Returns store.ErrQueueNotFound if the queue does not exist.
func (s *PostgresQueueStore) AttachStory(ctx context.Context, id uuid.UUID, story string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE daily_queues
		SET story = $1
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, story, id)
	if err != nil {
		log.Error("failed to attach story to daily queue",
			slog.String("error", err.Error()),
			slog.String("queue_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("queue_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrQueueNotFound
	}

	log.Info("story attached to daily queue",
		slog.String("queue_id", id.String()),
		slog.Int("story_length", len(story)))
	return nil
}

// WithTx implements store.QueueStore.WithTx
func (s *PostgresQueueStore) WithTx(tx *sql.Tx) store.QueueStore {
	return &PostgresQueueStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// queueDateArg renders a timestamp as a plain DATE literal on the UTC
// calendar. Binding a timestamptz against the DATE column would be cast
// through the session TimeZone, making the queue lock lookup depend on
// server settings.
func queueDateArg(t time.Time) string {
	return domain.DateOf(t).Format("2006-01-02")
}
