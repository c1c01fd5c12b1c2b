package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
)

// NodeAggregates carries recomputed subtree statistics for one node.
type NodeAggregates struct {
	NodeID    uuid.UUID
	CardCount int
	DueCount  int
	Progress  float64
}

// NodeStore defines the interface for deck node persistence.
type NodeStore interface {
	// Create saves a new deck node.
	// Returns ErrInvalidEntity if the referenced parent does not exist.
	Create(ctx context.Context, node *domain.DeckNode) error

	// GetByID retrieves a deck node by its unique ID.
	// Returns ErrNodeNotFound if the node does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeckNode, error)

	// ListByUser retrieves every deck node owned by the given user.
	// Returns an empty slice when the user has no nodes.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.DeckNode, error)

	// Update saves changes to an existing node's title and parent.
	// Returns ErrNodeNotFound if the node does not exist.
	Update(ctx context.Context, node *domain.DeckNode) error

	// UpdateAggregates batch-writes recomputed statistics for the given
	// nodes. MUST run inside a transaction so a partially aggregated
	// tree is never visible; services bind the store with WithTx before
	// calling it.
	UpdateAggregates(ctx context.Context, aggregates []NodeAggregates) error

	// Delete removes the given nodes. Cards owned by deleted deck nodes
	// are the caller's responsibility (see CardStore.DeleteByDeckIDs);
	// the deck service removes both inside one transaction.
	Delete(ctx context.Context, ids []uuid.UUID) error

	// WithTx returns a new NodeStore bound to the provided transaction.
	WithTx(tx *sql.Tx) NodeStore
}
