package srs

import (
	"math"
	"time"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
)

// ReviewState is the scheduling state of a card going into a review.
type ReviewState struct {
	Interval    int     // Days until next review; 0 = never successfully reviewed
	EaseFactor  float64 // SM-2 ease multiplier
	Repetitions int     // Consecutive successful reviews
}

// Schedule is the scheduling state of a card coming out of a review.
type Schedule struct {
	Interval    int
	EaseFactor  float64
	Repetitions int
	DueDate     time.Time
	Mastered    bool
}

// calculateNewEaseFactor applies the SM-2 ease update for the given
// quality. The update runs on every review, success or failure; only
// the floor keeps repeated failures from driving the ease unbounded
// downward.
//
// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)), clamped to the floor.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// A failing quality resets the interval to one day regardless of prior
// progress. Successful reviews walk the SM-2 ladder: one day, six days,
// then the prior interval scaled by the prior ease factor.
func calculateNewInterval(state ReviewState, quality int, params *Params) int {
	if quality < params.FailureQualityCutoff {
		return 1
	}

	switch state.Interval {
	case 0:
		return params.FirstSuccessInterval
	case 1:
		return params.SecondSuccessInterval
	default:
		return int(math.Round(float64(state.Interval) * state.EaseFactor))
	}
}

// calculateNextSchedule computes the full post-review schedule from the
// current state. Pure function: the input state is never mutated.
func calculateNextSchedule(state ReviewState, quality int, now time.Time, params *Params) Schedule {
	next := Schedule{
		EaseFactor:  calculateNewEaseFactor(state.EaseFactor, quality, params),
		Interval:    calculateNewInterval(state, quality, params),
		Repetitions: state.Repetitions,
	}

	if quality < params.FailureQualityCutoff {
		next.Repetitions = 0
	} else {
		next.Repetitions = state.Repetitions + 1
	}

	next.DueDate = now.AddDate(0, 0, next.Interval)
	next.Mastered = next.Repetitions >= domain.MasteryThreshold

	return next
}
