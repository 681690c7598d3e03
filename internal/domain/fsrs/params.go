package fsrs

import (
	"math"

	"github.com/smashenglish/review-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling model.
//
// The model is a simplified FSRS-style forgetting curve: retrievability
// decays as 0.9^(elapsed/stability), successful reviews grow stability in
// proportion to how surprising the success was, and failures reset
// stability to a small floor. One canonical formula set is used
// throughout; see the functions in algorithm.go for the exact recurrences.
type Params struct {
	// StabilityFloor is the smallest stability the model ever produces.
	// It is also the initial stability for the lowest rating and the
	// reset value after a failed review.
	StabilityFloor float64

	// InitialStability maps the first rating of a word to its starting
	// stability in days. Values are monotonically increasing in rating.
	InitialStability map[domain.Rating]float64

	// DifficultyAdjustment is added to difficulty after each review.
	// Failure pushes difficulty up, easy success pulls it down.
	DifficultyAdjustment map[domain.Rating]float64

	// InitialDifficultyBase and InitialDifficultyStep define the initial
	// difficulty as base - step*(grade - good grade), clamped to the
	// valid range. Higher ratings produce lower difficulty.
	InitialDifficultyBase float64
	InitialDifficultyStep float64

	// StabilityGrowth scales the stability gain on successful reviews.
	StabilityGrowth float64

	// StabilityModifier is a per-rating multiplier on the stability gain.
	// Only success ratings are consulted.
	StabilityModifier map[domain.Rating]float64

	// IntervalFactor converts stability to an interval in days. With a
	// 90% target retention it equals 1 (interval = stability), since the
	// decay base of the forgetting curve is 0.9.
	IntervalFactor float64

	// MaxIntervalDays caps the scheduled interval.
	MaxIntervalDays int

	// GraduationReps is the number of completed reviews after which a
	// consistently successful word moves from Learning to Review.
	GraduationReps int
}

// ParamsConfig allows overriding selected defaults when creating Params.
type ParamsConfig struct {
	// RequestRetention is the target recall probability at review time,
	// in (0, 1). Lower retention targets stretch intervals.
	RequestRetention float64

	// MaxIntervalDays caps the scheduled interval.
	MaxIntervalDays int

	// GraduationReps overrides the Learning -> Review threshold.
	GraduationReps int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		StabilityFloor: 0.5,

		InitialStability: map[domain.Rating]float64{
			domain.RatingAgain: 0.5,
			domain.RatingHard:  1.2,
			domain.RatingGood:  3.0,
			domain.RatingEasy:  7.5,
		},

		DifficultyAdjustment: map[domain.Rating]float64{
			domain.RatingAgain: 1.0,
			domain.RatingHard:  0.3,
			domain.RatingGood:  0.0,
			domain.RatingEasy:  -0.3,
		},

		InitialDifficultyBase: 5.0,
		InitialDifficultyStep: 1.2,

		StabilityGrowth: 2.0,
		StabilityModifier: map[domain.Rating]float64{
			domain.RatingHard: 0.6,
			domain.RatingGood: 1.0,
			domain.RatingEasy: 1.5,
		},

		// 90% retention target: interval equals stability.
		IntervalFactor: 1.0,

		MaxIntervalDays: 365,
		GraduationReps:  3,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued fields keep their defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.RequestRetention > 0 && config.RequestRetention < 1 {
		// Solve 0.9^(interval/stability) = retention for interval.
		params.IntervalFactor = math.Log(config.RequestRetention) / math.Log(0.9)
	}

	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if config.GraduationReps > 0 {
		params.GraduationReps = config.GraduationReps
	}

	return params
}
