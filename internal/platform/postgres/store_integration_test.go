package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
	"github.com/mnemosyne-app/mnemo-api/internal/testutils"
)

func TestUserStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, _, _ := testutils.NewTestStores(tx)
		ctx := context.Background()

		user := testutils.MustInsertUser(t, users, "roundtrip@example.com")

		byID, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)

		byEmail, err := users.GetByEmail(ctx, "roundtrip@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = users.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, _, _ := testutils.NewTestStores(tx)

		testutils.MustInsertUser(t, users, "dup@example.com")

		second, err := domain.NewUser("dup@example.com", "integration-test-pw")
		require.NoError(t, err)
		second.HashedPassword = "$2a$04$integrationteststandinhashvalue0000000000000000000000"

		err = users.Create(context.Background(), second)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestNodeStoreHierarchy(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, nodes, _ := testutils.NewTestStores(tx)
		ctx := context.Background()

		user := testutils.MustInsertUser(t, users, "nodes@example.com")
		folder := testutils.MustInsertNode(t, nodes, user.ID, "Languages", domain.NodeTypeFolder, nil)
		deck := testutils.MustInsertNode(t, nodes, user.ID, "Spanish", domain.NodeTypeDeck, &folder.ID)

		listed, err := nodes.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)

		// Reparent to root and rename.
		deck.ParentID = nil
		deck.Title = "Castilian"
		require.NoError(t, nodes.Update(ctx, deck))

		got, err := nodes.GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ParentID)
		assert.Equal(t, "Castilian", got.Title)

		// Aggregates persist.
		err = nodes.UpdateAggregates(ctx, []store.NodeAggregates{
			{NodeID: deck.ID, CardCount: 4, DueCount: 2, Progress: 50},
		})
		require.NoError(t, err)

		got, err = nodes.GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.CardCount)
		assert.Equal(t, 2, got.DueCount)
		assert.InDelta(t, 50.0, got.Progress, 0.001)

		// Delete both; lookups miss afterwards.
		require.NoError(t, nodes.Delete(ctx, []uuid.UUID{deck.ID, folder.ID}))
		_, err = nodes.GetByID(ctx, deck.ID)
		assert.ErrorIs(t, err, store.ErrNodeNotFound)
	})
}

func TestNodeStoreRejectsMissingParent(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, nodes, _ := testutils.NewTestStores(tx)

		user := testutils.MustInsertUser(t, users, "orphan@example.com")
		ghost := uuid.New()
		node, err := domain.NewDeckNode(user.ID, "Orphan", domain.NodeTypeDeck, &ghost)
		require.NoError(t, err)

		err = nodes.Create(context.Background(), node)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestCardStoreScheduling(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, nodes, cards := testutils.NewTestStores(tx)
		ctx := context.Background()

		user := testutils.MustInsertUser(t, users, "cards@example.com")
		deck := testutils.MustInsertNode(t, nodes, user.ID, "Spanish", domain.NodeTypeDeck, nil)
		card := testutils.MustInsertCard(t, cards, user.ID, deck.ID, "la casa", "house")

		due := time.Now().UTC().AddDate(0, 0, 6).Truncate(time.Microsecond)
		err := cards.UpdateScheduling(ctx, card.ID, store.CardScheduling{
			DueDate:     due,
			Interval:    6,
			EaseFactor:  2.6,
			Repetitions: 2,
		})
		require.NoError(t, err)

		got, err := cards.GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Interval)
		assert.Equal(t, 2, got.Repetitions)
		assert.InDelta(t, 2.6, got.EaseFactor, 0.0001)
		assert.WithinDuration(t, due, got.DueDate, time.Millisecond)

		err = cards.UpdateScheduling(ctx, uuid.New(), store.CardScheduling{DueDate: due, Interval: 1, EaseFactor: 2.5})
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func TestCardStoreDeleteByDeckIDs(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users, nodes, cards := testutils.NewTestStores(tx)
		ctx := context.Background()

		user := testutils.MustInsertUser(t, users, "bulk@example.com")
		spanish := testutils.MustInsertNode(t, nodes, user.ID, "Spanish", domain.NodeTypeDeck, nil)
		french := testutils.MustInsertNode(t, nodes, user.ID, "French", domain.NodeTypeDeck, nil)

		testutils.MustInsertCard(t, cards, user.ID, spanish.ID, "la casa", "house")
		testutils.MustInsertCard(t, cards, user.ID, spanish.ID, "el perro", "dog")
		kept := testutils.MustInsertCard(t, cards, user.ID, french.ID, "la maison", "house")

		require.NoError(t, cards.DeleteByDeckIDs(ctx, []uuid.UUID{spanish.ID}))

		remaining, err := cards.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, kept.ID, remaining[0].ID)
	})
}
