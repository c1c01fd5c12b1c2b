package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/logger"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// CardContent carries the user-editable fields of a card.
// Transcription, Example and ImageURL are optional.
type CardContent struct {
	Front         string
	Back          string
	Transcription string
	Example       string
	ImageURL      string
}

// DeckService implements deck tree and card mutations. Every structural
// mutation and its stats recompute commit in one transaction, so a partial
// cascade delete or a stale aggregate is never visible.
type DeckService interface {
	// CreateNode creates a deck or folder under the given parent (nil for a
	// root node). The parent must exist, belong to the user and be a
	// folder; sibling titles must be unique.
	CreateNode(
		ctx context.Context,
		userID uuid.UUID,
		title string,
		nodeType domain.NodeType,
		parentID *uuid.UUID,
	) (*domain.DeckNode, error)

	// GetNode retrieves a single node owned by the user.
	GetNode(ctx context.Context, userID, nodeID uuid.UUID) (*domain.DeckNode, error)

	// ListNodes returns every node owned by the user, with current
	// aggregates. The API layer assembles these into a tree.
	ListNodes(ctx context.Context, userID uuid.UUID) ([]*domain.DeckNode, error)

	// RenameNode changes a node's title, rejecting duplicates among its
	// siblings.
	RenameNode(ctx context.Context, userID, nodeID uuid.UUID, title string) (*domain.DeckNode, error)

	// MoveNode reparents a node. The new parent must be a folder owned by
	// the user, and must not be the node itself or one of its descendants.
	MoveNode(
		ctx context.Context,
		userID, nodeID uuid.UUID,
		newParentID *uuid.UUID,
	) (*domain.DeckNode, error)

	// DeleteNode removes a node, every descendant node, and every card
	// owned by the deleted decks, atomically.
	DeleteNode(ctx context.Context, userID, nodeID uuid.UUID) error

	// CreateCard adds a card to a deck-type node.
	CreateCard(
		ctx context.Context,
		userID, deckID uuid.UUID,
		content CardContent,
	) (*domain.Card, error)

	// GetCard retrieves a single card owned by the user.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// ListDeckCards returns the cards directly owned by a deck-type node.
	ListDeckCards(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error)

	// UpdateCard replaces a card's content fields. Scheduling state is
	// untouched; only answering through a session changes it.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, content CardContent) (*domain.Card, error)

	// DeleteCard removes a single card.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

// deckService implements DeckService.
type deckService struct {
	nodeStore store.NodeStore
	cardStore store.CardStore
	stats     StatsAggregator
	db        *sql.DB
	logger    *slog.Logger
}

// NewDeckService creates a DeckService.
func NewDeckService(
	nodeStore store.NodeStore,
	cardStore store.CardStore,
	stats StatsAggregator,
	db *sql.DB,
	log *slog.Logger,
) DeckService {
	if nodeStore == nil {
		panic("nodeStore cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if stats == nil {
		panic("stats aggregator cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &deckService{
		nodeStore: nodeStore,
		cardStore: cardStore,
		stats:     stats,
		db:        db,
		logger:    log.With(slog.String("component", "deck_service")),
	}
}

func (s *deckService) CreateNode(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	nodeType domain.NodeType,
	parentID *uuid.UUID,
) (*domain.DeckNode, error) {
	node, err := domain.NewDeckNode(userID, title, nodeType, parentID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	if parentID != nil {
		if err := checkParent(nodes, userID, *parentID); err != nil {
			return nil, err
		}
	}
	if siblingTitleTaken(nodes, parentID, title, uuid.Nil) {
		return nil, ErrDuplicateTitle
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.nodeStore.WithTx(tx).Create(ctx, node); err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}
		return s.stats.RecalculateAllInTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Debug("created deck node",
		slog.String("node_id", node.ID.String()),
		slog.String("type", string(nodeType)))
	return node, nil
}

func (s *deckService) GetNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
) (*domain.DeckNode, error) {
	node, err := s.nodeStore.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.UserID != userID {
		return nil, ErrNotOwned
	}
	return node, nil
}

func (s *deckService) ListNodes(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.DeckNode, error) {
	nodes, err := s.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

func (s *deckService) RenameNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
	title string,
) (*domain.DeckNode, error) {
	nodes, err := s.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	node, err := findOwnedNode(nodes, nodeID)
	if err != nil {
		return nil, err
	}
	if siblingTitleTaken(nodes, node.ParentID, title, node.ID) {
		return nil, ErrDuplicateTitle
	}

	node.Title = title
	if err := node.Validate(); err != nil {
		return nil, err
	}
	// Titles do not feed the aggregates, so a plain single-statement
	// update suffices.
	if err := s.nodeStore.Update(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to rename node: %w", err)
	}
	return node, nil
}

func (s *deckService) MoveNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
	newParentID *uuid.UUID,
) (*domain.DeckNode, error) {
	nodes, err := s.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	node, err := findOwnedNode(nodes, nodeID)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if err := checkParent(nodes, userID, *newParentID); err != nil {
			return nil, err
		}
		// Reparenting under the node's own subtree would cut the subtree
		// loose from the roots and form a cycle.
		subtree := subtreeNodeIDs(nodes, nodeID)
		if subtree[*newParentID] {
			return nil, ErrInvalidMove
		}
	}
	if siblingTitleTaken(nodes, newParentID, node.Title, node.ID) {
		return nil, ErrDuplicateTitle
	}

	node.ParentID = newParentID
	if err := node.Validate(); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.nodeStore.WithTx(tx).Update(ctx, node); err != nil {
			return fmt.Errorf("failed to move node: %w", err)
		}
		return s.stats.RecalculateAllInTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *deckService) DeleteNode(ctx context.Context, userID, nodeID uuid.UUID) error {
	nodes, err := s.nodeStore.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}
	if _, err := findOwnedNode(nodes, nodeID); err != nil {
		return err
	}

	subtree := subtreeNodeIDs(nodes, nodeID)
	nodeIDs := make([]uuid.UUID, 0, len(subtree))
	deckIDs := make([]uuid.UUID, 0, len(subtree))
	for _, n := range nodes {
		if !subtree[n.ID] {
			continue
		}
		nodeIDs = append(nodeIDs, n.ID)
		if !n.IsFolder() {
			deckIDs = append(deckIDs, n.ID)
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if len(deckIDs) > 0 {
			if err := s.cardStore.WithTx(tx).DeleteByDeckIDs(ctx, deckIDs); err != nil {
				return fmt.Errorf("failed to delete cards in subtree: %w", err)
			}
		}
		if err := s.nodeStore.WithTx(tx).Delete(ctx, nodeIDs); err != nil {
			return fmt.Errorf("failed to delete subtree nodes: %w", err)
		}
		return s.stats.RecalculateAllInTx(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	s.log(ctx).Info("deleted deck subtree",
		slog.String("node_id", nodeID.String()),
		slog.Int("node_count", len(nodeIDs)),
		slog.Int("deck_count", len(deckIDs)))
	return nil
}

func (s *deckService) CreateCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	content CardContent,
) (*domain.Card, error) {
	deck, err := s.GetNode(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	if deck.IsFolder() {
		return nil, ErrCardInFolder
	}

	card, err := domain.NewCard(userID, deckID, content.Front, content.Back)
	if err != nil {
		return nil, err
	}
	applyContent(card, content)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardStore.WithTx(tx).Create(ctx, card); err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		return s.stats.RecalculateAllInTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *deckService) GetCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrNotOwned
	}
	return card, nil
}

func (s *deckService) ListDeckCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.Card, error) {
	if _, err := s.GetNode(ctx, userID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.cardStore.ListByDeckIDs(ctx, []uuid.UUID{deckID})
	if err != nil {
		return nil, fmt.Errorf("failed to list deck cards: %w", err)
	}
	return cards, nil
}

func (s *deckService) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	content CardContent,
) (*domain.Card, error) {
	card, err := s.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	card.Front = content.Front
	card.Back = content.Back
	applyContent(card, content)
	if err := card.Validate(); err != nil {
		return nil, err
	}

	// Content edits do not touch scheduling or aggregates, so a plain
	// single-statement update suffices.
	if err := s.cardStore.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return card, nil
}

func (s *deckService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardStore.WithTx(tx).Delete(ctx, []uuid.UUID{cardID}); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		return s.stats.RecalculateAllInTx(ctx, tx, userID)
	})
}

func (s *deckService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// applyContent copies the optional content fields onto a card.
func applyContent(card *domain.Card, content CardContent) {
	card.Transcription = content.Transcription
	card.Example = content.Example
	card.ImageURL = content.ImageURL
}

// findOwnedNode locates a node in the user's node list. The list is already
// scoped to the user, so a miss means the node does not exist for them.
func findOwnedNode(nodes []*domain.DeckNode, nodeID uuid.UUID) (*domain.DeckNode, error) {
	for _, n := range nodes {
		if n.ID == nodeID {
			return n, nil
		}
	}
	return nil, store.ErrNodeNotFound
}

// checkParent verifies that a prospective parent exists in the user's node
// list and is a folder.
func checkParent(nodes []*domain.DeckNode, userID, parentID uuid.UUID) error {
	parent, err := findOwnedNode(nodes, parentID)
	if err != nil {
		return fmt.Errorf("%w: parent node", err)
	}
	if parent.UserID != userID {
		return ErrNotOwned
	}
	if !parent.IsFolder() {
		return ErrParentNotFolder
	}
	return nil
}

// siblingTitleTaken reports whether another node with the same title already
// sits under the same parent. excludeID skips the node being renamed/moved.
func siblingTitleTaken(
	nodes []*domain.DeckNode,
	parentID *uuid.UUID,
	title string,
	excludeID uuid.UUID,
) bool {
	for _, n := range nodes {
		if n.ID == excludeID || n.Title != title {
			continue
		}
		if sameParent(n.ParentID, parentID) {
			return true
		}
	}
	return false
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// subtreeNodeIDs returns the set of node IDs in the subtree rooted at
// rootID, the root included. The visited set doubles as a cycle guard.
func subtreeNodeIDs(nodes []*domain.DeckNode, rootID uuid.UUID) map[uuid.UUID]bool {
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}

	subtree := make(map[uuid.UUID]bool)
	queue := []uuid.UUID{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if subtree[id] {
			continue
		}
		subtree[id] = true
		queue = append(queue, children[id]...)
	}
	return subtree
}
