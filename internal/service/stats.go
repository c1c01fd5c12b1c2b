package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/logger"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// maxTreeDepth caps folder aggregation recursion. The visited-set guard
// already breaks cycles; the depth cap is a second stop for pathological
// parent chains.
const maxTreeDepth = 64

// StatsAggregator recomputes subtree statistics for the whole deck tree.
//
// The recompute is a full O(N) pass over every node and card rather than an
// incremental update. Typical corpora are thousands of cards, so the full
// pass stays cheap and is trivially idempotent.
type StatsAggregator interface {
	// RecalculateAll recomputes card counts, due counts and progress for
	// every node owned by the user and persists the results in a single
	// transaction. Callers run it after any mutation that can change the
	// aggregates (card add/remove/move, deck add/remove/move).
	RecalculateAll(ctx context.Context, userID uuid.UUID) error

	// RecalculateAllInTx performs the same recompute with all reads and
	// writes bound to the given transaction, so mutating services can
	// commit a structural change and its recompute atomically.
	RecalculateAllInTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

// statsAggregator implements StatsAggregator.
type statsAggregator struct {
	nodeStore store.NodeStore
	cardStore store.CardStore
	db        *sql.DB
	logger    *slog.Logger
	// now is injectable for tests.
	now func() time.Time
}

// NewStatsAggregator creates a StatsAggregator.
func NewStatsAggregator(
	nodeStore store.NodeStore,
	cardStore store.CardStore,
	db *sql.DB,
	log *slog.Logger,
) StatsAggregator {
	if nodeStore == nil {
		panic("nodeStore cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &statsAggregator{
		nodeStore: nodeStore,
		cardStore: cardStore,
		db:        db,
		logger:    log.With(slog.String("component", "stats_aggregator")),
		now:       time.Now,
	}
}

func (a *statsAggregator) RecalculateAll(ctx context.Context, userID uuid.UUID) error {
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return a.RecalculateAllInTx(ctx, tx, userID)
	})
}

// RecalculateAllInTx loads the full node and card sets through the
// transaction, recomputes every aggregate in memory, and batch-writes the
// results. Running the reads inside the transaction gives the recompute a
// consistent snapshot of the tree.
func (a *statsAggregator) RecalculateAllInTx(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, a.logger)
	nodeStore := a.nodeStore.WithTx(tx)

	nodes, err := nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load nodes for stats recompute: %w", err)
	}
	if len(nodes) == 0 {
		return nil
	}

	cards, err := a.cardStore.WithTx(tx).ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cards for stats recompute: %w", err)
	}

	aggregates := computeAggregates(nodes, cards, a.now().UTC())

	if err := nodeStore.UpdateAggregates(ctx, aggregates); err != nil {
		return fmt.Errorf("failed to persist recomputed stats: %w", err)
	}

	log.Debug("recomputed deck statistics",
		slog.String("user_id", userID.String()),
		slog.Int("node_count", len(nodes)),
		slog.Int("card_count", len(cards)))
	return nil
}

// computeAggregates derives fresh statistics for every node from the raw
// card set. Deck-type nodes are computed directly from their own cards;
// folder-type nodes sum their children's counts and take a
// card-count-weighted average of their children's progress, bottom-up with
// memoization so each node is computed exactly once.
func computeAggregates(
	nodes []*domain.DeckNode,
	cards []*domain.Card,
	now time.Time,
) []store.NodeAggregates {
	cardsByDeck := make(map[uuid.UUID][]*domain.Card, len(nodes))
	for _, c := range cards {
		cardsByDeck[c.DeckID] = append(cardsByDeck[c.DeckID], c)
	}

	byID := make(map[uuid.UUID]*domain.DeckNode, len(nodes))
	children := make(map[uuid.UUID][]*domain.DeckNode)
	for _, n := range nodes {
		byID[n.ID] = n
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n)
		}
	}

	computed := make(map[uuid.UUID]store.NodeAggregates, len(nodes))

	var compute func(node *domain.DeckNode, depth int) store.NodeAggregates
	compute = func(node *domain.DeckNode, depth int) store.NodeAggregates {
		if agg, ok := computed[node.ID]; ok {
			return agg
		}
		// Marking the node before descending turns a cyclic parent chain
		// into a zero contribution instead of infinite recursion.
		computed[node.ID] = store.NodeAggregates{NodeID: node.ID}
		if depth > maxTreeDepth {
			return computed[node.ID]
		}

		var agg store.NodeAggregates
		if node.IsFolder() {
			agg = foldChildren(node.ID, children[node.ID], func(child *domain.DeckNode) store.NodeAggregates {
				return compute(child, depth+1)
			})
		} else {
			agg = deckAggregates(node.ID, cardsByDeck[node.ID], now)
		}

		computed[node.ID] = agg
		return agg
	}

	for _, n := range nodes {
		compute(n, 0)
	}

	out := make([]store.NodeAggregates, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, computed[n.ID])
	}
	// Deterministic write order keeps the recompute idempotent at the
	// persistence layer as well.
	sort.Slice(out, func(i, j int) bool {
		return out[i].NodeID.String() < out[j].NodeID.String()
	})
	return out
}

// deckAggregates computes leaf statistics for a deck-type node from its own
// cards. Progress is the percentage of cards studied at least once, i.e.
// with a positive interval.
func deckAggregates(nodeID uuid.UUID, cards []*domain.Card, now time.Time) store.NodeAggregates {
	agg := store.NodeAggregates{NodeID: nodeID, CardCount: len(cards)}
	if len(cards) == 0 {
		return agg
	}

	studied := 0
	for _, c := range cards {
		if c.IsDue(now) {
			agg.DueCount++
		}
		if !c.IsNew() {
			studied++
		}
	}
	agg.Progress = 100 * float64(studied) / float64(agg.CardCount)
	return agg
}

// foldChildren combines immediate children's aggregates into a folder's:
// counts are summed, progress is a card-count-weighted average. A folder
// whose subtree holds zero cards has zero progress.
func foldChildren(
	nodeID uuid.UUID,
	childNodes []*domain.DeckNode,
	childAgg func(*domain.DeckNode) store.NodeAggregates,
) store.NodeAggregates {
	agg := store.NodeAggregates{NodeID: nodeID}

	var weighted float64
	for _, child := range childNodes {
		ca := childAgg(child)
		agg.CardCount += ca.CardCount
		agg.DueCount += ca.DueCount
		weighted += ca.Progress / 100 * float64(ca.CardCount)
	}
	if agg.CardCount > 0 {
		agg.Progress = 100 * weighted / float64(agg.CardCount)
	}
	return agg
}
