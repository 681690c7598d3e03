package fsrs

import (
	"errors"
	"testing"
	"time"

	"github.com/smashenglish/review-api/internal/domain"
)

func mustReview(
	t *testing.T,
	svc Service,
	state domain.ReviewState,
	rating domain.Rating,
	now time.Time,
) domain.ReviewState {
	t.Helper()
	next, err := svc.Review(state, rating, now)
	if err != nil {
		t.Fatalf("Review returned unexpected error: %v", err)
	}
	return next
}

func TestReviewFirstReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, rating := range []domain.Rating{
		domain.RatingAgain,
		domain.RatingHard,
		domain.RatingGood,
		domain.RatingEasy,
	} {
		t.Run(string(rating), func(t *testing.T) {
			state := domain.NewReviewState(now.Add(-time.Hour))

			next := mustReview(t, svc, state, rating, now)

			if next.Stability != InitialStability(rating, params) {
				t.Errorf("Expected initial stability %f, got %f",
					InitialStability(rating, params), next.Stability)
			}
			if next.Difficulty != InitialDifficulty(rating, params) {
				t.Errorf("Expected initial difficulty %f, got %f",
					InitialDifficulty(rating, params), next.Difficulty)
			}
			if next.Repetitions != 1 {
				t.Errorf("Expected 1 repetition, got %d", next.Repetitions)
			}
			if !next.LastReviewedAt.Equal(now) {
				t.Errorf("Expected last reviewed at %v, got %v", now, next.LastReviewedAt)
			}
			if next.State == domain.CardStateNew {
				t.Error("Expected the word to leave the new state after its first review")
			}

			wantDue := now.AddDate(0, 0, next.ScheduledDays)
			if !next.DueAt.Equal(wantDue) {
				t.Errorf("Expected due at %v, got %v", wantDue, next.DueAt)
			}
		})
	}
}

func TestReviewInvalidRating(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	state := domain.NewReviewState(now)

	_, err := svc.Review(state, domain.Rating("brilliant"), now)
	if !errors.Is(err, domain.ErrInvalidRating) {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}
}

func TestReviewSameDayGuard(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)

	state := domain.NewReviewState(morning.Add(-24 * time.Hour))
	reviewed := mustReview(t, svc, state, domain.RatingGood, morning)

	t.Run("Second review on the same date is rejected", func(t *testing.T) {
		got, err := svc.Review(reviewed, domain.RatingEasy, evening)
		if !errors.Is(err, ErrReviewedToday) {
			t.Fatalf("Expected ErrReviewedToday, got %v", err)
		}
		if got != reviewed {
			t.Error("Expected the state to be returned unchanged")
		}
	})

	t.Run("Review just after midnight is allowed", func(t *testing.T) {
		next, err := svc.Review(reviewed, domain.RatingGood, nextDay)
		if err != nil {
			t.Fatalf("Expected review on the next date to succeed, got %v", err)
		}
		if next.Repetitions != 2 {
			t.Errorf("Expected 2 repetitions, got %d", next.Repetitions)
		}
	})
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state := domain.NewReviewState(now.Add(-time.Hour))
	before := state

	_ = mustReview(t, svc, state, domain.RatingGood, now)

	if state != before {
		t.Error("Expected Review to leave the input state untouched")
	}
}

func TestReviewSuccessGrowsInterval(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state := domain.NewReviewState(now.AddDate(0, 0, -10))
	first := mustReview(t, svc, state, domain.RatingGood, now)

	second := mustReview(t, svc, first, domain.RatingGood, now.AddDate(0, 0, first.ScheduledDays))

	if second.Stability <= first.Stability {
		t.Errorf("Expected stability to grow: %f <= %f", second.Stability, first.Stability)
	}
	if second.ScheduledDays < first.ScheduledDays {
		t.Errorf("Expected interval not to shrink: %d < %d",
			second.ScheduledDays, first.ScheduledDays)
	}
}

func TestReviewFailureResetsStability(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state := domain.NewReviewState(now.AddDate(0, 0, -30))
	grown := mustReview(t, svc, state, domain.RatingEasy, now)

	failed := mustReview(t, svc, grown, domain.RatingAgain, now.AddDate(0, 0, grown.ScheduledDays))

	if failed.Stability != params.StabilityFloor {
		t.Errorf("Expected stability to reset to floor %f, got %f",
			params.StabilityFloor, failed.Stability)
	}
	if failed.Difficulty <= grown.Difficulty {
		t.Errorf("Expected difficulty to rise after failure: %f <= %f",
			failed.Difficulty, grown.Difficulty)
	}
}

func TestReviewLifecycleTransitions(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Word graduates to review after enough successes", func(t *testing.T) {
		state := domain.NewReviewState(start)
		now := start

		for i := 0; i < 3; i++ {
			next := mustReview(t, svc, state, domain.RatingGood, now)
			state = next
			now = now.AddDate(0, 0, next.ScheduledDays)
		}

		if state.State != domain.CardStateReview {
			t.Errorf("Expected review state after 3 successes, got %s", state.State)
		}
	})

	t.Run("Failure demotes a learned word to relearning", func(t *testing.T) {
		state := domain.NewReviewState(start)
		now := start
		for i := 0; i < 3; i++ {
			state = mustReview(t, svc, state, domain.RatingGood, now)
			now = now.AddDate(0, 0, state.ScheduledDays)
		}

		failed := mustReview(t, svc, state, domain.RatingAgain, now)
		if failed.State != domain.CardStateRelearning {
			t.Errorf("Expected relearning after failure, got %s", failed.State)
		}

		recovered := mustReview(t, svc, failed, domain.RatingGood,
			now.AddDate(0, 0, failed.ScheduledDays))
		if recovered.State != domain.CardStateReview {
			t.Errorf("Expected review after recovery, got %s", recovered.State)
		}
	})

	t.Run("Unlearned word stays learning after failure", func(t *testing.T) {
		state := domain.NewReviewState(start)
		failed := mustReview(t, svc, state, domain.RatingAgain, start.Add(time.Hour))
		if failed.State != domain.CardStateLearning {
			t.Errorf("Expected learning after first failure, got %s", failed.State)
		}
	})
}

func TestReviewElapsedDays(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state := domain.NewReviewState(now)
	first := mustReview(t, svc, state, domain.RatingGood, now)

	later := now.AddDate(0, 0, 5)
	second := mustReview(t, svc, first, domain.RatingGood, later)

	if second.ElapsedDays != 5 {
		t.Errorf("Expected 5 elapsed days, got %d", second.ElapsedDays)
	}
}

func TestReviewProducesValidState(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ratings := []domain.Rating{
		domain.RatingAgain, domain.RatingHard, domain.RatingGood, domain.RatingEasy,
		domain.RatingAgain, domain.RatingGood, domain.RatingEasy,
	}

	state := domain.NewReviewState(now)
	for i, rating := range ratings {
		next := mustReview(t, svc, state, rating, now)
		if err := next.Validate(); err != nil {
			t.Fatalf("Review %d (%s) produced invalid state: %v", i, rating, err)
		}
		state = next
		now = now.AddDate(0, 0, maxInt(next.ScheduledDays, 1))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
