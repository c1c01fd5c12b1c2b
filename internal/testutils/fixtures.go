package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/postgres"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// DiscardLogger returns a logger whose output is thrown away.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestStores creates postgres stores bound to the given transaction.
func NewTestStores(tx store.DBTX) (store.UserStore, store.NodeStore, store.CardStore) {
	log := DiscardLogger()
	return postgres.NewPostgresUserStore(tx, log),
		postgres.NewPostgresNodeStore(tx, log),
		postgres.NewPostgresCardStore(tx, log)
}

// MustInsertUser persists a user with a placeholder password hash.
func MustInsertUser(t *testing.T, users store.UserStore, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(email, "integration-test-pw")
	require.NoError(t, err)
	user.HashedPassword = "$2a$04$integrationteststandinhashvalue0000000000000000000000"
	user.Password = ""
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// MustInsertNode persists a deck or folder node.
func MustInsertNode(
	t *testing.T,
	nodes store.NodeStore,
	userID uuid.UUID,
	title string,
	nodeType domain.NodeType,
	parentID *uuid.UUID,
) *domain.DeckNode {
	t.Helper()

	node, err := domain.NewDeckNode(userID, title, nodeType, parentID)
	require.NoError(t, err)
	require.NoError(t, nodes.Create(context.Background(), node))
	return node
}

// MustInsertCard persists a card in the given deck.
func MustInsertCard(
	t *testing.T,
	cards store.CardStore,
	userID, deckID uuid.UUID,
	front, back string,
) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(userID, deckID, front, back)
	require.NoError(t, err)
	require.NoError(t, cards.Create(context.Background(), card))
	return card
}
