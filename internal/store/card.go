package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
)

// CardScheduling carries the post-review scheduling fields persisted
// after each answered card.
type CardScheduling struct {
	DueDate     time.Time
	Interval    int
	EaseFactor  float64
	Repetitions int
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card.
	// Returns ErrInvalidEntity if the referenced deck does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByUser retrieves every card owned by the given user.
	// Returns an empty slice when the user has no cards.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error)

	// ListByDeckIDs retrieves all cards owned by the given decks.
	// Unknown deck IDs simply contribute no cards.
	ListByDeckIDs(ctx context.Context, deckIDs []uuid.UUID) ([]*domain.Card, error)

	// Update saves changes to an existing card's content fields and
	// owning deck. Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// UpdateScheduling persists a card's post-review scheduling state.
	// This is the per-answer commit: it must be atomic on its own so an
	// abandoned session never loses recorded progress.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateScheduling(ctx context.Context, id uuid.UUID, sched CardScheduling) error

	// Delete removes the given cards.
	Delete(ctx context.Context, ids []uuid.UUID) error

	// DeleteByDeckIDs removes every card owned by the given decks.
	// Used by the cascade delete; MUST run in the same transaction as
	// the node deletion.
	DeleteByDeckIDs(ctx context.Context, deckIDs []uuid.UUID) error

	// WithTx returns a new CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
