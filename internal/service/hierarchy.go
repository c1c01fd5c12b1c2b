package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/logger"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// HierarchyResolver flattens a deck/folder subtree into the deck IDs and
// cards it contains.
//
// Resolution sits on hot read paths (opening a folder, starting a session,
// recomputing stats), so an unknown node ID yields an empty result with a
// logged diagnostic rather than an error. Store failures still propagate.
type HierarchyResolver interface {
	// DescendantDeckIDs returns the IDs of every deck-type node reachable
	// from the given node, including the node itself when it is a deck.
	// Folders are traversed but not collected.
	DescendantDeckIDs(ctx context.Context, userID, nodeID uuid.UUID) ([]uuid.UUID, error)

	// CardsInScope returns every card owned by the decks in the subtree
	// rooted at the given node. A folder with no deck descendants yields an
	// empty slice.
	CardsInScope(ctx context.Context, userID, nodeID uuid.UUID) ([]*domain.Card, error)
}

// hierarchyResolver implements HierarchyResolver against the node and card
// stores.
type hierarchyResolver struct {
	nodeStore store.NodeStore
	cardStore store.CardStore
	logger    *slog.Logger
}

// NewHierarchyResolver creates a HierarchyResolver.
func NewHierarchyResolver(
	nodeStore store.NodeStore,
	cardStore store.CardStore,
	log *slog.Logger,
) HierarchyResolver {
	if nodeStore == nil {
		panic("nodeStore cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &hierarchyResolver{
		nodeStore: nodeStore,
		cardStore: cardStore,
		logger:    log.With(slog.String("component", "hierarchy_resolver")),
	}
}

func (r *hierarchyResolver) DescendantDeckIDs(
	ctx context.Context,
	userID, nodeID uuid.UUID,
) ([]uuid.UUID, error) {
	nodes, err := r.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes for hierarchy resolution: %w", err)
	}

	return collectDeckIDs(ctx, nodes, nodeID, r.logger), nil
}

func (r *hierarchyResolver) CardsInScope(
	ctx context.Context,
	userID, nodeID uuid.UUID,
) ([]*domain.Card, error) {
	deckIDs, err := r.DescendantDeckIDs(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}
	if len(deckIDs) == 0 {
		return []*domain.Card{}, nil
	}

	cards, err := r.cardStore.ListByDeckIDs(ctx, deckIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards in scope: %w", err)
	}
	return cards, nil
}

// collectDeckIDs walks the subtree rooted at nodeID breadth-first over an
// adjacency built from the full node list and collects the deck-type nodes.
// A visited set guards against malformed parent chains forming a cycle.
func collectDeckIDs(
	ctx context.Context,
	nodes []*domain.DeckNode,
	nodeID uuid.UUID,
	fallback *slog.Logger,
) []uuid.UUID {
	byID := make(map[uuid.UUID]*domain.DeckNode, len(nodes))
	children := make(map[uuid.UUID][]*domain.DeckNode)
	for _, n := range nodes {
		byID[n.ID] = n
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n)
		}
	}

	root, ok := byID[nodeID]
	if !ok {
		log := logger.FromContextOrDefault(ctx, fallback)
		log.Warn("hierarchy resolution for unknown node, returning empty scope",
			slog.String("node_id", nodeID.String()))
		return []uuid.UUID{}
	}

	deckIDs := make([]uuid.UUID, 0)
	visited := make(map[uuid.UUID]bool, len(nodes))
	queue := []*domain.DeckNode{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true

		if !node.IsFolder() {
			deckIDs = append(deckIDs, node.ID)
			continue
		}
		queue = append(queue, children[node.ID]...)
	}

	return deckIDs
}
