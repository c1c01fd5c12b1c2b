package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// MockSessionService implements service.SessionService for testing.
type MockSessionService struct {
	StartFn            func(ctx context.Context, userID, scopeID uuid.UUID, selector service.CardSelector, mode service.SessionMode) (*service.SessionSnapshot, error)
	GetFn              func(ctx context.Context, userID, sessionID uuid.UUID) (*service.SessionSnapshot, error)
	AnswerFn           func(ctx context.Context, userID, sessionID uuid.UUID, feedback domain.ReviewFeedback) (*service.SessionSnapshot, error)
	CheckTypedAnswerFn func(ctx context.Context, userID, sessionID uuid.UUID, answer string) (bool, error)
	GuessOptionsFn     func(ctx context.Context, userID, sessionID uuid.UUID) ([]string, error)
	EndFn              func(ctx context.Context, userID, sessionID uuid.UUID) error
}

func (m *MockSessionService) Start(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	selector service.CardSelector,
	mode service.SessionMode,
) (*service.SessionSnapshot, error) {
	if m.StartFn != nil {
		return m.StartFn(ctx, userID, scopeID, selector, mode)
	}
	return nil, nil
}

func (m *MockSessionService) Get(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*service.SessionSnapshot, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, sessionID)
	}
	return nil, nil
}

func (m *MockSessionService) Answer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	feedback domain.ReviewFeedback,
) (*service.SessionSnapshot, error) {
	if m.AnswerFn != nil {
		return m.AnswerFn(ctx, userID, sessionID, feedback)
	}
	return nil, nil
}

func (m *MockSessionService) CheckTypedAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer string,
) (bool, error) {
	if m.CheckTypedAnswerFn != nil {
		return m.CheckTypedAnswerFn(ctx, userID, sessionID, answer)
	}
	return false, nil
}

func (m *MockSessionService) GuessOptions(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) ([]string, error) {
	if m.GuessOptionsFn != nil {
		return m.GuessOptionsFn(ctx, userID, sessionID)
	}
	return nil, nil
}

func (m *MockSessionService) End(ctx context.Context, userID, sessionID uuid.UUID) error {
	if m.EndFn != nil {
		return m.EndFn(ctx, userID, sessionID)
	}
	return nil
}
