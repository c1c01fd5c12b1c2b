// Package srs implements the SM-2 spaced-repetition scheduler used to
// decide when each card is due again.
package srs

// Quality bounds accepted by the scheduler. The UI only ever produces
// two of these values (see QualityForgot / QualityRemembered), but the
// calculator accepts the full SM-2 range.
const (
	MinQuality = 0
	MaxQuality = 5

	// QualityForgot is the raw quality a "forgot" answer maps to.
	QualityForgot = 2

	// QualityRemembered is the raw quality a "remembered" answer maps to.
	QualityRemembered = 4
)

// Params defines the configurable parameters of the SM-2 variant.
type Params struct {
	// MinEaseFactor is the hard floor applied after every ease update.
	MinEaseFactor float64

	// FailureQualityCutoff is the quality below which a review counts
	// as a failure and resets progress.
	FailureQualityCutoff int

	// FirstSuccessInterval is the interval in days after the first
	// successful review of a new card.
	FirstSuccessInterval int

	// SecondSuccessInterval is the interval in days after a successful
	// review of a card whose interval is one day.
	SecondSuccessInterval int
}

// NewDefaultParams creates a new Params instance with the standard
// SM-2 values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:         1.3,
		FailureQualityCutoff:  3,
		FirstSuccessInterval:  1,
		SecondSuccessInterval: 6,
	}
}
