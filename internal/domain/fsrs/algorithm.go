package fsrs

import (
	"math"

	"github.com/smashenglish/review-api/internal/domain"
)

// Retrievability returns the probability of recalling a word after
// elapsedDays, given its stability. At zero elapsed days it is exactly 1;
// a non-positive stability is treated as "infinitely hard" and yields 0
// rather than a division error.
func Retrievability(elapsedDays int, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(0.9, float64(elapsedDays)/stability)
}

// InitialStability returns the starting stability for a word's first
// review. It is monotonically increasing in the rating; the lowest rating
// maps to the stability floor.
func InitialStability(rating domain.Rating, params *Params) float64 {
	s, ok := params.InitialStability[rating]
	if !ok {
		return params.StabilityFloor
	}
	return s
}

// InitialDifficulty returns the starting difficulty for a word's first
// review: easier recall means lower difficulty. The result is clamped to
// the valid difficulty range.
func InitialDifficulty(rating domain.Rating, params *Params) float64 {
	offset := float64(rating.Grade() - domain.RatingGood.Grade())
	d := params.InitialDifficultyBase - params.InitialDifficultyStep*offset
	return clampDifficulty(d)
}

// NextStability computes the post-review stability.
//
// Failure ("again") resets stability to the floor. Success grows it by
//
//	s' = s * (1 + growth * (11-d)/10 * (1.1-R) * m(rating))
//
// so a surprising success (low prior retrievability R) and an easy word
// (low difficulty d) both produce a bigger gain. The growth term is
// strictly positive, hence success always strictly increases stability.
func NextStability(
	stability float64,
	difficulty float64,
	retrievability float64,
	rating domain.Rating,
	params *Params,
) float64 {
	if !rating.IsSuccess() {
		return params.StabilityFloor
	}

	gain := params.StabilityGrowth *
		(domain.MaxDifficulty + 1 - difficulty) / 10 *
		(1.1 - retrievability) *
		params.StabilityModifier[rating]

	next := stability * (1 + gain)
	if next < params.StabilityFloor {
		next = params.StabilityFloor
	}
	return next
}

// NextDifficulty nudges difficulty after a review: up on failure, down on
// easy success, unchanged on a plain "good". Clamped to the valid range.
func NextDifficulty(difficulty float64, rating domain.Rating, params *Params) float64 {
	return clampDifficulty(difficulty + params.DifficultyAdjustment[rating])
}

// NextIntervalDays converts stability to the next review interval. The
// interval grows with stability, is rounded to whole days, and is always
// at least one day and at most MaxIntervalDays.
func NextIntervalDays(stability float64, params *Params) int {
	interval := int(math.Round(stability * params.IntervalFactor))
	if interval < 1 {
		interval = 1
	}
	if interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	return interval
}

func clampDifficulty(d float64) float64 {
	if d < domain.MinDifficulty {
		return domain.MinDifficulty
	}
	if d > domain.MaxDifficulty {
		return domain.MaxDifficulty
	}
	return d
}
