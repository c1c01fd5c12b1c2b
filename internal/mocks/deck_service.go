package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// MockDeckService implements service.DeckService for testing. Every method
// delegates to the matching function field; unset fields return zero values.
type MockDeckService struct {
	CreateNodeFn    func(ctx context.Context, userID uuid.UUID, title string, nodeType domain.NodeType, parentID *uuid.UUID) (*domain.DeckNode, error)
	GetNodeFn       func(ctx context.Context, userID, nodeID uuid.UUID) (*domain.DeckNode, error)
	ListNodesFn     func(ctx context.Context, userID uuid.UUID) ([]*domain.DeckNode, error)
	RenameNodeFn    func(ctx context.Context, userID, nodeID uuid.UUID, title string) (*domain.DeckNode, error)
	MoveNodeFn      func(ctx context.Context, userID, nodeID uuid.UUID, newParentID *uuid.UUID) (*domain.DeckNode, error)
	DeleteNodeFn    func(ctx context.Context, userID, nodeID uuid.UUID) error
	CreateCardFn    func(ctx context.Context, userID, deckID uuid.UUID, content service.CardContent) (*domain.Card, error)
	GetCardFn       func(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)
	ListDeckCardsFn func(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error)
	UpdateCardFn    func(ctx context.Context, userID, cardID uuid.UUID, content service.CardContent) (*domain.Card, error)
	DeleteCardFn    func(ctx context.Context, userID, cardID uuid.UUID) error
}

func (m *MockDeckService) CreateNode(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	nodeType domain.NodeType,
	parentID *uuid.UUID,
) (*domain.DeckNode, error) {
	if m.CreateNodeFn != nil {
		return m.CreateNodeFn(ctx, userID, title, nodeType, parentID)
	}
	return nil, nil
}

func (m *MockDeckService) GetNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
) (*domain.DeckNode, error) {
	if m.GetNodeFn != nil {
		return m.GetNodeFn(ctx, userID, nodeID)
	}
	return nil, nil
}

func (m *MockDeckService) ListNodes(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.DeckNode, error) {
	if m.ListNodesFn != nil {
		return m.ListNodesFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockDeckService) RenameNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
	title string,
) (*domain.DeckNode, error) {
	if m.RenameNodeFn != nil {
		return m.RenameNodeFn(ctx, userID, nodeID, title)
	}
	return nil, nil
}

func (m *MockDeckService) MoveNode(
	ctx context.Context,
	userID, nodeID uuid.UUID,
	newParentID *uuid.UUID,
) (*domain.DeckNode, error) {
	if m.MoveNodeFn != nil {
		return m.MoveNodeFn(ctx, userID, nodeID, newParentID)
	}
	return nil, nil
}

func (m *MockDeckService) DeleteNode(ctx context.Context, userID, nodeID uuid.UUID) error {
	if m.DeleteNodeFn != nil {
		return m.DeleteNodeFn(ctx, userID, nodeID)
	}
	return nil
}

func (m *MockDeckService) CreateCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	content service.CardContent,
) (*domain.Card, error) {
	if m.CreateCardFn != nil {
		return m.CreateCardFn(ctx, userID, deckID, content)
	}
	return nil, nil
}

func (m *MockDeckService) GetCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, userID, cardID)
	}
	return nil, nil
}

func (m *MockDeckService) ListDeckCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.Card, error) {
	if m.ListDeckCardsFn != nil {
		return m.ListDeckCardsFn(ctx, userID, deckID)
	}
	return nil, nil
}

func (m *MockDeckService) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	content service.CardContent,
) (*domain.Card, error) {
	if m.UpdateCardFn != nil {
		return m.UpdateCardFn(ctx, userID, cardID, content)
	}
	return nil, nil
}

func (m *MockDeckService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if m.DeleteCardFn != nil {
		return m.DeleteCardFn(ctx, userID, cardID)
	}
	return nil
}
