package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front side is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back side is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardNegativeInterval is returned when a card's interval is negative.
	ErrCardNegativeInterval = errors.New("card interval cannot be negative")

	// ErrCardEaseTooLow is returned when a card's ease factor is below the floor.
	ErrCardEaseTooLow = errors.New("card ease factor cannot fall below 1.3")
)

const (
	// DefaultEaseFactor is the ease assigned to a freshly created card.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the hard floor for a card's ease factor.
	MinEaseFactor = 1.3

	// MasteryThreshold is the repetition count at which a card counts
	// as mastered. Fixed policy constant, not configurable.
	MasteryThreshold = 5
)

// Card represents a single flashcard owned by a deck. Scheduling state
// lives directly on the card: an Interval of 0 means the card has never
// been successfully reviewed.
type Card struct {
	ID            uuid.UUID `json:"id"`
	DeckID        uuid.UUID `json:"deck_id"`
	UserID        uuid.UUID `json:"user_id"`
	Front         string    `json:"front"`
	Back          string    `json:"back"`
	Transcription string    `json:"transcription,omitempty"`
	Example       string    `json:"example,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	DueDate       time.Time `json:"due_date"`
	Interval      int       `json:"interval"` // Days until next review; 0 = new card
	EaseFactor    float64   `json:"ease_factor"`
	Repetitions   int       `json:"repetitions"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewCard creates a new Card owned by the given user and deck.
// New cards are due immediately with a zero interval and default ease.
func NewCard(userID, deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:          uuid.New(),
		DeckID:      deckID,
		UserID:      userID,
		Front:       front,
		Back:        back,
		DueDate:     now,
		Interval:    0,
		EaseFactor:  DefaultEaseFactor,
		Repetitions: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if c.Interval < 0 {
		return ErrCardNegativeInterval
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrCardEaseTooLow
	}

	return nil
}

// IsMastered reports whether the card has reached the repetition
// threshold signaling long-term retention.
func (c *Card) IsMastered() bool {
	return c.Repetitions >= MasteryThreshold
}

// IsDue reports whether the card's due date has passed relative to now.
func (c *Card) IsDue(now time.Time) bool {
	return !c.DueDate.After(now)
}

// IsNew reports whether the card has never been successfully reviewed.
func (c *Card) IsNew() bool {
	return c.Interval == 0
}
