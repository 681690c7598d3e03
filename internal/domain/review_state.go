package domain

import (
	"errors"
	"time"
)

// Rating represents the recall feedback a user gives for a word review.
type Rating string

// Possible rating values, ordered from worst to best recall.
const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Grade returns the numeric grade for a rating (again=1 .. easy=4).
// Returns 0 for an unknown rating.
func (r Rating) Grade() int {
	switch r {
	case RatingAgain:
		return 1
	case RatingHard:
		return 2
	case RatingGood:
		return 3
	case RatingEasy:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether the rating is one of the supported values.
func (r Rating) IsValid() bool {
	return r.Grade() != 0
}

// ParseRating normalizes a rating string, accepting the legacy
// three-level names ("forget", "hazy", "know") still sent by older
// clients. The second return value reports whether the input was
// recognized.
func ParseRating(s string) (Rating, bool) {
	switch s {
	case "forget":
		return RatingAgain, true
	case "hazy":
		return RatingHard, true
	case "know":
		return RatingGood, true
	}

	r := Rating(s)
	return r, r.IsValid()
}

// IsSuccess reports whether the rating counts as a successful recall.
// Only "again" is a failure.
func (r Rating) IsSuccess() bool {
	return r.IsValid() && r != RatingAgain
}

// CardState represents where a word sits in the review lifecycle.
type CardState string

// Possible lifecycle states.
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// IsValid reports whether the card state is one of the defined states.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	default:
		return false
	}
}

// Validation errors for ReviewState.
var (
	ErrInvalidStability  = errors.New("stability must be greater than 0")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
	ErrInvalidCardState  = errors.New("invalid card state")
	ErrInconsistentState = errors.New(
		"repetitions, last reviewed time and card state are inconsistent",
	)
	ErrMissingDueAt = errors.New("due time must be set")
)

// Difficulty bounds shared by the review state and the scheduling model.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// ReviewState tracks the spaced-repetition memory state of a single word.
// It is embedded in Word and mutated only through the scheduling model.
type ReviewState struct {
	Stability      float64   `json:"stability"`       // Days over which retrievability decays
	Difficulty     float64   `json:"difficulty"`      // 1-10, higher is harder to retain
	Repetitions    int       `json:"repetitions"`     // Completed review count
	ElapsedDays    int       `json:"elapsed_days"`    // Days since the previous review, at review time
	ScheduledDays  int       `json:"scheduled_days"`  // Interval chosen at the last review
	LastReviewedAt time.Time `json:"last_reviewed_at"` // Zero until the first review
	DueAt          time.Time `json:"due_at"`          // When the word next becomes reviewable
	State          CardState `json:"state"`
}

// NewReviewState returns the initial memory state for a freshly saved word:
// never reviewed, due immediately.
func NewReviewState(now time.Time) ReviewState {
	return ReviewState{
		Stability:      InitialStabilityFloor,
		Difficulty:     DefaultDifficulty,
		Repetitions:    0,
		ElapsedDays:    0,
		ScheduledDays:  0,
		LastReviewedAt: time.Time{},
		DueAt:          now,
		State:          CardStateNew,
	}
}

// Seed values for unreviewed words. The scheduling model replaces both on
// the first review; they exist so the stability invariant holds from
// creation onward.
const (
	InitialStabilityFloor = 0.5
	DefaultDifficulty     = 5.0
)

// Validate checks the ReviewState invariants.
// Returns an error if any field fails validation.
func (s ReviewState) Validate() error {
	if s.Stability <= 0 {
		return ErrInvalidStability
	}

	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}

	if s.Repetitions < 0 || s.ElapsedDays < 0 || s.ScheduledDays < 0 {
		return ErrInvalidRepetition
	}

	if !s.State.IsValid() {
		return ErrInvalidCardState
	}

	if s.DueAt.IsZero() {
		return ErrMissingDueAt
	}

	// repetitions == 0, an absent last review and the New state imply
	// each other.
	neverReviewed := s.Repetitions == 0
	if neverReviewed != s.LastReviewedAt.IsZero() ||
		neverReviewed != (s.State == CardStateNew) {
		return ErrInconsistentState
	}

	return nil
}
