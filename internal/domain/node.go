package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NodeType distinguishes leaf decks from container folders.
type NodeType string

// Possible deck node types
const (
	NodeTypeDeck   NodeType = "deck"
	NodeTypeFolder NodeType = "folder"
)

// Deck node validation errors
var (
	// ErrNodeIDEmpty is returned when a deck node ID is empty or nil.
	ErrNodeIDEmpty = errors.New("deck node ID cannot be empty")

	// ErrNodeUserIDEmpty is returned when a deck node's user ID is empty or nil.
	ErrNodeUserIDEmpty = errors.New("deck node user ID cannot be empty")

	// ErrNodeTitleEmpty is returned when a deck node's title is empty.
	ErrNodeTitleEmpty = errors.New("deck node title cannot be empty")

	// ErrNodeSelfParent is returned when a deck node references itself as parent.
	ErrNodeSelfParent = errors.New("deck node cannot be its own parent")
)

// DeckNode is a node in the per-user deck tree. Deck-type nodes own
// cards directly; folder-type nodes own only other nodes. A nil
// ParentID marks a root node.
//
// CardCount, DueCount, and Progress are aggregates over the node's
// subtree, maintained by the stats aggregator: for a deck they are
// computed from its own cards, for a folder they are derived strictly
// from its children and never stored independently of them.
type DeckNode struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Type      NodeType   `json:"type"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CardCount int        `json:"card_count"`
	DueCount  int        `json:"due_count"`
	Progress  float64    `json:"progress"` // Percent of subtree cards studied at least once
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewDeckNode creates a new deck or folder node for the given user.
// parentID may be nil for a root node; parent existence and type are
// enforced by the deck service, not here.
func NewDeckNode(userID uuid.UUID, title string, nodeType NodeType, parentID *uuid.UUID) (*DeckNode, error) {
	now := time.Now().UTC()
	node := &DeckNode{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Type:      nodeType,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

// Validate checks if the DeckNode has valid data.
// Returns an error if any field fails validation.
func (n *DeckNode) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNodeIDEmpty
	}

	if n.UserID == uuid.Nil {
		return ErrNodeUserIDEmpty
	}

	if n.Title == "" {
		return ErrNodeTitleEmpty
	}

	if n.Type != NodeTypeDeck && n.Type != NodeTypeFolder {
		return ErrInvalidNodeType
	}

	if n.ParentID != nil && *n.ParentID == n.ID {
		return ErrNodeSelfParent
	}

	return nil
}

// IsFolder reports whether the node is a container folder.
func (n *DeckNode) IsFolder() bool {
	return n.Type == NodeTypeFolder
}

// IsRoot reports whether the node sits at the top of the tree.
func (n *DeckNode) IsRoot() bool {
	return n.ParentID == nil
}
