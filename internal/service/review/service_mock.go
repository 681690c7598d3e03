package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smashenglish/review-api/internal/domain"
)

// MockReviewService is a configurable mock implementation of ReviewService
// for use in tests.
type MockReviewService struct {
	GetDailyQueueFn func(ctx context.Context, userID uuid.UUID, now time.Time) (*DailyQueueView, error)
	SubmitReviewFn  func(ctx context.Context, userID, wordID uuid.UUID, rating domain.Rating, now time.Time) (*ReviewSummary, error)
}

// Ensure MockReviewService implements ReviewService interface
var _ ReviewService = (*MockReviewService)(nil)

// GetDailyQueue calls the configured GetDailyQueueFn.
func (m *MockReviewService) GetDailyQueue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*DailyQueueView, error) {
	if m.GetDailyQueueFn != nil {
		return m.GetDailyQueueFn(ctx, userID, now)
	}
	return &DailyQueueView{
		Queue: domain.EmptyDailyQueue(userID, now),
		Words: []*domain.Word{},
	}, nil
}

// SubmitReview calls the configured SubmitReviewFn.
func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	wordID uuid.UUID,
	rating domain.Rating,
	now time.Time,
) (*ReviewSummary, error) {
	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, userID, wordID, rating, now)
	}
	return &ReviewSummary{WordID: wordID, Rating: rating}, nil
}
