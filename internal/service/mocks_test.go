package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// fakeNodeStore is an in-memory store.NodeStore for unit tests.
type fakeNodeStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]*domain.DeckNode

	listErr error
}

func newFakeNodeStore(nodes ...*domain.DeckNode) *fakeNodeStore {
	s := &fakeNodeStore{nodes: make(map[uuid.UUID]*domain.DeckNode)}
	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
	return s
}

func (s *fakeNodeStore) Create(_ context.Context, node *domain.DeckNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.ID] = node
	return nil
}

func (s *fakeNodeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.DeckNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, store.ErrNodeNotFound
	}
	return node, nil
}

func (s *fakeNodeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.DeckNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*domain.DeckNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeNodeStore) Update(_ context.Context, node *domain.DeckNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[node.ID]; !ok {
		return store.ErrNodeNotFound
	}
	s.nodes[node.ID] = node
	return nil
}

func (s *fakeNodeStore) UpdateAggregates(_ context.Context, aggregates []store.NodeAggregates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agg := range aggregates {
		node, ok := s.nodes[agg.NodeID]
		if !ok {
			return store.ErrNodeNotFound
		}
		node.CardCount = agg.CardCount
		node.DueCount = agg.DueCount
		node.Progress = agg.Progress
	}
	return nil
}

func (s *fakeNodeStore) Delete(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.nodes, id)
	}
	return nil
}

func (s *fakeNodeStore) WithTx(_ *sql.Tx) store.NodeStore { return s }

// fakeCardStore is an in-memory store.CardStore for unit tests.
type fakeCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card

	schedulingUpdates int
}

func newFakeCardStore(cards ...*domain.Card) *fakeCardStore {
	s := &fakeCardStore{cards: make(map[uuid.UUID]*domain.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (s *fakeCardStore) Create(_ context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
	return nil
}

func (s *fakeCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (s *fakeCardStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCardStore) ListByDeckIDs(_ context.Context, deckIDs []uuid.UUID) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(deckIDs))
	for _, id := range deckIDs {
		want[id] = true
	}
	out := make([]*domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if want[c.DeckID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCardStore) Update(_ context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	s.cards[card.ID] = card
	return nil
}

func (s *fakeCardStore) UpdateScheduling(
	_ context.Context,
	id uuid.UUID,
	sched store.CardScheduling,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	card.DueDate = sched.DueDate
	card.Interval = sched.Interval
	card.EaseFactor = sched.EaseFactor
	card.Repetitions = sched.Repetitions
	s.schedulingUpdates++
	return nil
}

func (s *fakeCardStore) Delete(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.cards, id)
	}
	return nil
}

func (s *fakeCardStore) DeleteByDeckIDs(_ context.Context, deckIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(deckIDs))
	for _, id := range deckIDs {
		want[id] = true
	}
	for id, c := range s.cards {
		if want[c.DeckID] {
			delete(s.cards, id)
		}
	}
	return nil
}

func (s *fakeCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

// Test entity builders.

func testNode(userID uuid.UUID, title string, nodeType domain.NodeType, parentID *uuid.UUID) *domain.DeckNode {
	node, err := domain.NewDeckNode(userID, title, nodeType, parentID)
	if err != nil {
		panic(err)
	}
	return node
}

func testFolder(userID uuid.UUID, title string, parentID *uuid.UUID) *domain.DeckNode {
	return testNode(userID, title, domain.NodeTypeFolder, parentID)
}

func testDeck(userID uuid.UUID, title string, parentID *uuid.UUID) *domain.DeckNode {
	return testNode(userID, title, domain.NodeTypeDeck, parentID)
}

func testCard(userID, deckID uuid.UUID, front, back string) *domain.Card {
	card, err := domain.NewCard(userID, deckID, front, back)
	if err != nil {
		panic(err)
	}
	return card
}

// fakeStatsAggregator records recompute calls without touching a database.
type fakeStatsAggregator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeStatsAggregator) RecalculateAll(_ context.Context, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeStatsAggregator) RecalculateAllInTx(
	_ context.Context,
	_ *sql.Tx,
	_ uuid.UUID,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}
