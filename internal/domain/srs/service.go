package srs

import (
	"errors"
	"time"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality  = errors.New("review quality must be between 0 and 5")
	ErrInvalidFeedback = errors.New("invalid review feedback")
)

// Service defines the interface for scheduler operations.
type Service interface {
	// ComputeNextReview computes the post-review schedule for a card
	// given the raw 0-5 review quality.
	ComputeNextReview(state ReviewState, quality int, now time.Time) (Schedule, error)
}

// QualityForFeedback maps the binary study feedback to a raw SM-2
// quality: "forgot" fails the review, "remembered" passes it.
func QualityForFeedback(feedback domain.ReviewFeedback) (int, error) {
	switch feedback {
	case domain.FeedbackForgot:
		return QualityForgot, nil
	case domain.FeedbackRemembered:
		return QualityRemembered, nil
	default:
		return 0, ErrInvalidFeedback
	}
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ComputeNextReview implements the Service interface.
func (s *defaultService) ComputeNextReview(
	state ReviewState,
	quality int,
	now time.Time,
) (Schedule, error) {
	if quality < MinQuality || quality > MaxQuality {
		return Schedule{}, ErrInvalidQuality
	}

	return calculateNextSchedule(state, quality, now, s.params), nil
}

// StateOf extracts a card's scheduling state for the calculator.
func StateOf(card *domain.Card) ReviewState {
	return ReviewState{
		Interval:    card.Interval,
		EaseFactor:  card.EaseFactor,
		Repetitions: card.Repetitions,
	}
}

// ApplySchedule writes a computed schedule back onto a card.
func ApplySchedule(card *domain.Card, sched Schedule, now time.Time) {
	card.Interval = sched.Interval
	card.EaseFactor = sched.EaseFactor
	card.Repetitions = sched.Repetitions
	card.DueDate = sched.DueDate
	card.UpdatedAt = now
}
