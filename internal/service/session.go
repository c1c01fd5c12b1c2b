package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/domain/srs"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/logger"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// SessionMode selects how a quiz session filters and orders its cards.
type SessionMode string

// Supported session modes.
const (
	// ModeSpacedRepetition studies the selector's subset in random order.
	ModeSpacedRepetition SessionMode = "sr"
	// ModeSimple studies every card in scope, new cards first.
	ModeSimple SessionMode = "simple"
	// ModeBlitz studies due cards under a per-card countdown; letting the
	// countdown lapse counts as a forgotten answer.
	ModeBlitz SessionMode = "blitz"
)

// CardSelector filters the cards entering a spaced-repetition session.
type CardSelector string

// Supported card selectors.
const (
	// SelectorDue picks cards whose due date has passed. Default.
	SelectorDue CardSelector = "due"
	// SelectorNew picks cards never successfully reviewed.
	SelectorNew CardSelector = "new"
	// SelectorReviewAll picks every card studied at least once.
	SelectorReviewAll CardSelector = "review_all"
)

// SessionState is the lifecycle state of a quiz session.
type SessionState string

const (
	SessionActive   SessionState = "active"
	SessionComplete SessionState = "complete"
)

// blitzCardTimeout is how long a blitz session shows each card before a
// missing answer counts as forgotten.
const blitzCardTimeout = 15 * time.Second

// SessionSnapshot is the caller-visible view of a quiz session. The queue
// itself stays private to the service; callers see the current card and the
// remaining count.
type SessionSnapshot struct {
	ID           uuid.UUID    `json:"id"`
	ScopeID      uuid.UUID    `json:"scope_id"`
	Mode         SessionMode  `json:"mode"`
	Selector     CardSelector `json:"selector"`
	State        SessionState `json:"state"`
	Remaining    int          `json:"remaining"`
	Answered     int          `json:"answered"`
	CurrentCard  *domain.Card `json:"current_card,omitempty"`
	CardDeadline *time.Time   `json:"card_deadline,omitempty"`
}

// quizSession is the in-memory state of one active session.
type quizSession struct {
	id       uuid.UUID
	userID   uuid.UUID
	scopeID  uuid.UUID
	mode     SessionMode
	selector CardSelector
	state    SessionState

	// queue is a deque: the head is the card being studied, forgotten
	// cards requeue to the tail.
	queue    []*domain.Card
	answered int

	// scopeBacks holds every in-scope card's answer field for
	// multiple-choice distractor sampling, captured at session start.
	scopeBacks []string

	// cardDeadline is the blitz countdown for the current card.
	cardDeadline time.Time
}

// SessionService runs quiz sessions. Sessions live in memory; each answered
// card's scheduling update commits individually, so abandoning a session
// discards only the remaining queue, never recorded progress.
type SessionService interface {
	// Start builds a session queue from the scope node's cards per the
	// selector and mode. Returns ErrEmptySession when nothing matches.
	Start(
		ctx context.Context,
		userID, scopeID uuid.UUID,
		selector CardSelector,
		mode SessionMode,
	) (*SessionSnapshot, error)

	// Get returns the current state of a session.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*SessionSnapshot, error)

	// Answer applies the user's feedback to the current card: the SRS
	// calculator reschedules it, the new schedule is persisted, and the
	// queue advances. Forgotten cards requeue to the tail for re-drill
	// when other cards remain. The session completes when the queue
	// empties.
	Answer(
		ctx context.Context,
		userID, sessionID uuid.UUID,
		feedback domain.ReviewFeedback,
	) (*SessionSnapshot, error)

	// CheckTypedAnswer reports whether a typed answer matches the current
	// card's back, tolerating one edit for answers longer than five
	// characters. It does not advance the queue.
	CheckTypedAnswer(ctx context.Context, userID, sessionID uuid.UUID, answer string) (bool, error)

	// GuessOptions returns four shuffled multiple-choice options for the
	// current card, the correct answer among them.
	GuessOptions(ctx context.Context, userID, sessionID uuid.UUID) ([]string, error)

	// End abandons a session, discarding its remaining queue.
	End(ctx context.Context, userID, sessionID uuid.UUID) error
}

// sessionService implements SessionService with a mutex-guarded in-memory
// registry. The single mutex covers both the registry and session state;
// session operations are short apart from the per-answer persistence call,
// and study traffic is per-user interactive, so contention stays trivial.
type sessionService struct {
	hierarchy HierarchyResolver
	scheduler srs.Service
	cardStore store.CardStore
	stats     StatsAggregator
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*quizSession

	// now and rng are injectable for tests.
	now func() time.Time
	rng *rand.Rand
}

// NewSessionService creates a SessionService.
func NewSessionService(
	hierarchy HierarchyResolver,
	scheduler srs.Service,
	cardStore store.CardStore,
	stats StatsAggregator,
	log *slog.Logger,
) SessionService {
	if hierarchy == nil {
		panic("hierarchy resolver cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
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
	return &sessionService{
		hierarchy: hierarchy,
		scheduler: scheduler,
		cardStore: cardStore,
		stats:     stats,
		logger:    log.With(slog.String("component", "session_service")),
		sessions:  make(map[uuid.UUID]*quizSession),
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *sessionService) Start(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	selector CardSelector,
	mode SessionMode,
) (*SessionSnapshot, error) {
	if mode == "" {
		mode = ModeSpacedRepetition
	}
	if selector == "" {
		selector = SelectorDue
	}
	switch mode {
	case ModeSpacedRepetition, ModeSimple, ModeBlitz:
	default:
		return nil, ErrInvalidSessionMode
	}
	switch selector {
	case SelectorDue, SelectorNew, SelectorReviewAll:
	default:
		return nil, ErrInvalidCardSelector
	}

	cards, err := s.hierarchy.CardsInScope(ctx, userID, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session scope: %w", err)
	}

	scopeBacks := make([]string, 0, len(cards))
	for _, c := range cards {
		scopeBacks = append(scopeBacks, c.Back)
	}

	now := s.now()
	queue := buildQueue(cards, mode, selector, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(queue) == 0 {
		return nil, ErrEmptySession
	}
	s.orderQueue(queue, mode)

	session := &quizSession{
		id:         uuid.New(),
		userID:     userID,
		scopeID:    scopeID,
		mode:       mode,
		selector:   selector,
		state:      SessionActive,
		queue:      queue,
		scopeBacks: scopeBacks,
	}
	if mode == ModeBlitz {
		session.cardDeadline = now.Add(blitzCardTimeout)
	}
	s.sessions[session.id] = session

	logger.FromContextOrDefault(ctx, s.logger).Debug("started quiz session",
		slog.String("session_id", session.id.String()),
		slog.String("mode", string(mode)),
		slog.String("selector", string(selector)),
		slog.Int("queue_length", len(queue)))

	return s.snapshot(session), nil
}

func (s *sessionService) Get(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

func (s *sessionService) Answer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	feedback domain.ReviewFeedback,
) (*SessionSnapshot, error) {
	if !domain.ValidFeedback(feedback) {
		return nil, srs.ErrInvalidFeedback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.state != SessionActive {
		return nil, ErrSessionComplete
	}

	now := s.now()
	// An answer past the blitz countdown counts as forgotten no matter
	// what the client sends.
	if session.mode == ModeBlitz && now.After(session.cardDeadline) {
		feedback = domain.FeedbackForgot
	}

	quality, err := srs.QualityForFeedback(feedback)
	if err != nil {
		return nil, err
	}

	card := session.queue[0]
	sched, err := s.scheduler.ComputeNextReview(srs.StateOf(card), quality, now)
	if err != nil {
		return nil, err
	}

	// Commit this card's schedule on its own: progress already recorded
	// survives the session being abandoned.
	err = s.cardStore.UpdateScheduling(ctx, card.ID, store.CardScheduling{
		DueDate:     sched.DueDate,
		Interval:    sched.Interval,
		EaseFactor:  sched.EaseFactor,
		Repetitions: sched.Repetitions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}
	srs.ApplySchedule(card, sched, now)

	session.queue = session.queue[1:]
	if feedback == domain.FeedbackForgot && len(session.queue) > 0 {
		// Session-local re-drill: the forgotten card comes back at the
		// tail. A lone card is not requeued, there is nothing to
		// interleave it with.
		session.queue = append(session.queue, card)
	}
	session.answered++

	if len(session.queue) == 0 {
		session.state = SessionComplete
	} else if session.mode == ModeBlitz {
		session.cardDeadline = now.Add(blitzCardTimeout)
	}

	if err := s.stats.RecalculateAll(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error(
			"failed to recompute stats after answer",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
	}

	return s.snapshot(session), nil
}

func (s *sessionService) CheckTypedAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return false, err
	}
	if session.state != SessionActive {
		return false, ErrSessionComplete
	}
	return MatchTypedAnswer(session.queue[0].Back, answer), nil
}

func (s *sessionService) GuessOptions(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.state != SessionActive {
		return nil, ErrSessionComplete
	}
	return generateGuessOptions(session.queue[0].Back, session.scopeBacks, s.rng), nil
}

func (s *sessionService) End(ctx context.Context, userID, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(userID, sessionID); err != nil {
		return err
	}
	delete(s.sessions, sessionID)

	logger.FromContextOrDefault(ctx, s.logger).Debug("ended quiz session",
		slog.String("session_id", sessionID.String()))
	return nil
}

// lookup finds a session and checks ownership. Callers hold s.mu.
func (s *sessionService) lookup(userID, sessionID uuid.UUID) (*quizSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.userID != userID {
		return nil, ErrNotOwned
	}
	return session, nil
}

// snapshot builds the caller-visible view. Callers hold s.mu.
func (s *sessionService) snapshot(session *quizSession) *SessionSnapshot {
	snap := &SessionSnapshot{
		ID:        session.id,
		ScopeID:   session.scopeID,
		Mode:      session.mode,
		Selector:  session.selector,
		State:     session.state,
		Remaining: len(session.queue),
		Answered:  session.answered,
	}
	if session.state == SessionActive && len(session.queue) > 0 {
		current := *session.queue[0]
		snap.CurrentCard = &current
		if session.mode == ModeBlitz {
			deadline := session.cardDeadline
			snap.CardDeadline = &deadline
		}
	}
	return snap
}

// orderQueue applies the mode's ordering. Spaced-repetition and blitz
// queues are uniformly shuffled; simple mode keeps the new-cards-first
// order produced by buildQueue.
func (s *sessionService) orderQueue(queue []*domain.Card, mode SessionMode) {
	if mode == ModeSimple {
		return
	}
	s.rng.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})
}

// buildQueue filters the in-scope cards per the session mode and selector.
// Simple mode takes every card and floats new cards to the front without
// disturbing relative order; blitz always studies the due subset.
func buildQueue(
	cards []*domain.Card,
	mode SessionMode,
	selector CardSelector,
	now time.Time,
) []*domain.Card {
	if mode == ModeSimple {
		queue := make([]*domain.Card, len(cards))
		copy(queue, cards)
		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].IsNew() && !queue[j].IsNew()
		})
		return queue
	}

	if mode == ModeBlitz {
		selector = SelectorDue
	}

	queue := make([]*domain.Card, 0, len(cards))
	for _, c := range cards {
		switch selector {
		case SelectorNew:
			if c.IsNew() {
				queue = append(queue, c)
			}
		case SelectorReviewAll:
			if !c.IsNew() {
				queue = append(queue, c)
			}
		default:
			if c.IsDue(now) {
				queue = append(queue, c)
			}
		}
	}
	return queue
}
