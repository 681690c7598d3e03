package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
	"github.com/smashenglish/review-api/internal/domain/fsrs"
	"github.com/smashenglish/review-api/internal/generation"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db         *sql.DB
	wordStore  store.WordStore
	queueStore store.QueueStore
	scheduler  fsrs.Service
	storyGen   generation.StoryGenerator // May be nil; stories are optional
	dailyLimit int
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService implementation.
// storyGen may be nil, in which case queues are created without a story.
func NewReviewService(
	db *sql.DB,
	wordStore store.WordStore,
	queueStore store.QueueStore,
	scheduler fsrs.Service,
	storyGen generation.StoryGenerator,
	dailyLimit int,
	logger *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if wordStore == nil {
		panic("wordStore cannot be nil")
	}
	if queueStore == nil {
		panic("queueStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if dailyLimit <= 0 {
		panic("dailyLimit must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:         db,
		wordStore:  wordStore,
		queueStore: queueStore,
		scheduler:  scheduler,
		storyGen:   storyGen,
		dailyLimit: dailyLimit,
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

// GetDailyQueue implements ReviewService.GetDailyQueue.
func (s *reviewServiceImpl) GetDailyQueue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*DailyQueueView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	date := domain.DateOf(now)

	log.Debug("retrieving daily queue",
		slog.String("user_id", userID.String()),
		slog.Time("queue_date", date))

	// Fast path: the queue for this date is already locked.
	queue, err := s.queueStore.FindByDate(ctx, userID, date)
	if err == nil {
		return s.loadQueueView(ctx, queue)
	}
	if !errors.Is(err, store.ErrQueueNotFound) {
		log.Error("failed to look up daily queue",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetDailyQueueError("failed to look up daily queue", err)
	}

	// No queue yet: select candidates as of now.
	candidates, err := s.wordStore.FindDueOrNew(ctx, userID, now, s.dailyLimit)
	if err != nil {
		log.Error("failed to select queue candidates",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetDailyQueueError("failed to select queue candidates", err)
	}

	// Nothing to review: report an empty queue without locking the date,
	// so words added later today can still form a queue.
	if len(candidates) == 0 {
		log.Debug("no reviewable words, returning empty queue",
			slog.String("user_id", userID.String()),
			slog.Time("queue_date", date))
		return &DailyQueueView{
			Queue: domain.EmptyDailyQueue(userID, date),
			Words: []*domain.Word{},
		}, nil
	}

	wordIDs := make([]uuid.UUID, len(candidates))
	for i, word := range candidates {
		wordIDs[i] = word.ID
	}

	queue, err = domain.NewDailyQueue(userID, date, wordIDs)
	if err != nil {
		return nil, NewGetDailyQueueError("failed to build daily queue", err)
	}

	err = s.queueStore.Create(ctx, queue)
	if err != nil {
		// A concurrent call locked the queue first. Its word list wins,
		// even if it differs from the candidates selected here.
		if errors.Is(err, store.ErrQueueExists) {
			log.Debug("lost queue creation race, reading winner",
				slog.String("user_id", userID.String()),
				slog.Time("queue_date", date))
			existing, readErr := s.queueStore.FindByDate(ctx, userID, date)
			if readErr != nil {
				return nil, NewGetDailyQueueError("failed to read existing daily queue", readErr)
			}
			return s.loadQueueView(ctx, existing)
		}

		log.Error("failed to create daily queue",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetDailyQueueError("failed to create daily queue", err)
	}

	log.Info("daily queue locked",
		slog.String("user_id", userID.String()),
		slog.String("queue_id", queue.ID.String()),
		slog.Time("queue_date", date),
		slog.Int("word_count", len(wordIDs)))

	s.attachStory(ctx, queue, candidates)

	return &DailyQueueView{Queue: queue, Words: candidates}, nil
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	wordID uuid.UUID,
	rating domain.Rating,
	now time.Time,
) (*ReviewSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review submission",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("rating", string(rating)))

	if !rating.IsValid() {
		log.Warn("invalid review rating",
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()),
			slog.String("rating", string(rating)))
		return nil, ErrInvalidRating
	}

	var summary *ReviewSummary
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		words := s.wordStore.WithTx(tx)

		word, err := words.GetByID(ctx, wordID)
		if err != nil {
			if errors.Is(err, store.ErrWordNotFound) {
				log.Warn("word not found for review",
					slog.String("user_id", userID.String()),
					slog.String("word_id", wordID.String()))
				return ErrWordNotFound
			}
			return fmt.Errorf("failed to get word: %w", err)
		}

		if word.UserID != userID {
			log.Warn("user does not own word",
				slog.String("user_id", userID.String()),
				slog.String("word_id", wordID.String()),
				slog.String("owner_id", word.UserID.String()))
			return ErrWordNotOwned
		}

		newState, err := s.scheduler.Review(word.Review, rating, now)
		if err != nil {
			if errors.Is(err, fsrs.ErrReviewedToday) {
				return ErrAlreadyReviewedToday
			}
			if errors.Is(err, domain.ErrInvalidRating) {
				return ErrInvalidRating
			}
			return fmt.Errorf("failed to compute next review state: %w", err)
		}

		err = words.UpdateReviewState(ctx, wordID, newState, word.Review.LastReviewedAt)
		if err != nil {
			// A concurrent submission moved the state between our read and
			// the swap. The winner's review stands; this one is a same-day
			// repeat by definition.
			if errors.Is(err, store.ErrConflict) {
				log.Debug("review submission lost compare-and-swap",
					slog.String("user_id", userID.String()),
					slog.String("word_id", wordID.String()))
				return ErrAlreadyReviewedToday
			}
			if errors.Is(err, store.ErrWordNotFound) {
				return ErrWordNotFound
			}
			return fmt.Errorf("failed to persist review state: %w", err)
		}

		summary = &ReviewSummary{
			WordID: wordID,
			Rating: rating,
			Review: newState,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrWordNotFound) ||
			errors.Is(err, ErrWordNotOwned) ||
			errors.Is(err, ErrInvalidRating) ||
			errors.Is(err, ErrAlreadyReviewedToday) {
			return nil, err
		}

		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()))
		return nil, NewSubmitReviewError("failed to submit review", err)
	}

	log.Info("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("rating", string(rating)),
		slog.String("state", string(summary.Review.State)),
		slog.Int("scheduled_days", summary.Review.ScheduledDays),
		slog.Time("due_at", summary.Review.DueAt))

	return summary, nil
}

// loadQueueView joins a persisted queue with its word records, preserving
// queue order.
func (s *reviewServiceImpl) loadQueueView(
	ctx context.Context,
	queue *domain.DailyQueue,
) (*DailyQueueView, error) {
	words, err := s.wordStore.ListByIDs(ctx, queue.WordIDs)
	if err != nil {
		return nil, NewGetDailyQueueError("failed to load queue words", err)
	}
	return &DailyQueueView{Queue: queue, Words: words}, nil
}

// attachStory generates and stores a story for a freshly locked queue.
// Story generation is best effort: any failure leaves the queue usable
// without one.
func (s *reviewServiceImpl) attachStory(
	ctx context.Context,
	queue *domain.DailyQueue,
	words []*domain.Word,
) {
	if s.storyGen == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	terms := make([]string, len(words))
	for i, word := range words {
		terms[i] = word.Term
	}

	story, err := s.storyGen.GenerateStory(ctx, terms)
	if err != nil {
		log.Warn("story generation failed, queue left without story",
			slog.String("error", err.Error()),
			slog.String("queue_id", queue.ID.String()))
		return
	}

	if err := s.queueStore.AttachStory(ctx, queue.ID, story); err != nil {
		log.Warn("failed to attach story to queue",
			slog.String("error", err.Error()),
			slog.String("queue_id", queue.ID.String()))
		return
	}

	queue.Story = story
}
