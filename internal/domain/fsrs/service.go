package fsrs

import (
	"errors"
	"time"

	"github.com/smashenglish/review-api/internal/domain"
)

// ErrReviewedToday is returned by Review when the word was already
// reviewed on the same calendar date. It is a defined idempotent outcome,
// not a fault: the caller keeps the existing state and reports "already
// done" rather than failing.
var ErrReviewedToday = errors.New("word already reviewed today")

// Service defines the interface for the review state transition.
type Service interface {
	// Review applies a rating to a word's memory state at time now and
	// returns the new state. The input state is never modified.
	//
	// Returns domain.ErrInvalidRating for an unsupported rating and
	// ErrReviewedToday if the state was already reviewed on the same
	// UTC calendar date as now.
	Review(
		state domain.ReviewState,
		rating domain.Rating,
		now time.Time,
	) (domain.ReviewState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Review implements the Service interface.
func (s *defaultService) Review(
	state domain.ReviewState,
	rating domain.Rating,
	now time.Time,
) (domain.ReviewState, error) {
	if !rating.IsValid() {
		return state, domain.ErrInvalidRating
	}

	// Once-per-day guard: a second submission on the same calendar date
	// must not move the schedule again.
	if !state.LastReviewedAt.IsZero() && domain.SameDay(state.LastReviewedAt, now) {
		return state, ErrReviewedToday
	}

	next := state
	elapsed := 0

	if state.Repetitions == 0 {
		next.Stability = InitialStability(rating, s.params)
		next.Difficulty = InitialDifficulty(rating, s.params)
	} else {
		elapsed = daysBetween(state.LastReviewedAt, now)
		r := Retrievability(elapsed, state.Stability)
		next.Stability = NextStability(state.Stability, state.Difficulty, r, rating, s.params)
		next.Difficulty = NextDifficulty(state.Difficulty, rating, s.params)
	}

	next.ScheduledDays = NextIntervalDays(next.Stability, s.params)
	next.DueAt = now.AddDate(0, 0, next.ScheduledDays)
	next.ElapsedDays = elapsed
	next.Repetitions = state.Repetitions + 1
	next.LastReviewedAt = now
	next.State = nextCardState(state.State, rating, next.Repetitions, s.params)

	return next, nil
}

// nextCardState applies the lifecycle transition. Failure demotes a
// learned word to Relearning (an unlearned one stays Learning); success
// recovers Relearning back to Review, and graduates Learning to Review
// after enough repetitions.
func nextCardState(
	prev domain.CardState,
	rating domain.Rating,
	repetitions int,
	params *Params,
) domain.CardState {
	if !rating.IsSuccess() {
		if prev == domain.CardStateReview || prev == domain.CardStateRelearning {
			return domain.CardStateRelearning
		}
		return domain.CardStateLearning
	}

	if prev == domain.CardStateRelearning || prev == domain.CardStateReview {
		return domain.CardStateReview
	}

	if repetitions >= params.GraduationReps {
		return domain.CardStateReview
	}
	return domain.CardStateLearning
}

// daysBetween returns the number of whole days from a to b, never negative.
func daysBetween(a, b time.Time) int {
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
