package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/mocks"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

func testSnapshot(scopeID uuid.UUID, card *domain.Card, remaining int) *service.SessionSnapshot {
	return &service.SessionSnapshot{
		ID:          uuid.New(),
		ScopeID:     scopeID,
		Mode:        service.ModeSpacedRepetition,
		Selector:    service.SelectorDue,
		State:       service.SessionActive,
		Remaining:   remaining,
		CurrentCard: card,
	}
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	scopeID := uuid.New()
	card, err := domain.NewCard(userID, scopeID, "la casa", "house")
	require.NoError(t, err)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "defaults applied",
			payload:    map[string]interface{}{"scope_id": scopeID.String()},
			wantStatus: http.StatusCreated,
		},
		{
			name: "explicit mode and selector",
			payload: map[string]interface{}{
				"scope_id": scopeID.String(),
				"mode":     "blitz",
				"selector": "due",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing scope",
			payload:    map[string]interface{}{"mode": "sr"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown mode",
			payload:    map[string]interface{}{"scope_id": scopeID.String(), "mode": "marathon"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "nothing to study",
			payload:    map[string]interface{}{"scope_id": scopeID.String()},
			serviceErr: service.ErrEmptySession,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "scope not owned",
			payload:    map[string]interface{}{"scope_id": scopeID.String()},
			serviceErr: service.ErrNotOwned,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionService := &mocks.MockSessionService{
				StartFn: func(
					ctx context.Context,
					gotUserID, gotScopeID uuid.UUID,
					selector service.CardSelector,
					mode service.SessionMode,
				) (*service.SessionSnapshot, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					assert.Equal(t, userID, gotUserID)
					assert.Equal(t, scopeID, gotScopeID)
					return testSnapshot(gotScopeID, card, 5), nil
				},
			}
			handler := NewSessionHandler(sessionService)

			req := newHandlerRequest(t, "POST", "/sessions", tt.payload, userID, nil)
			recorder := httptest.NewRecorder()
			handler.Start(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp SessionResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, scopeID, resp.ScopeID)
				assert.Equal(t, "active", resp.State)
				assert.Equal(t, 5, resp.Remaining)
				require.NotNil(t, resp.CurrentCard)
				assert.Equal(t, "la casa", resp.CurrentCard.Front)
			}
			if tt.wantStatus == http.StatusNoContent {
				assert.Empty(t, recorder.Body.String())
			}
		})
	}
}

func TestAnswerSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()
	scopeID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "remembered",
			payload:    map[string]interface{}{"feedback": "remembered"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "forgot",
			payload:    map[string]interface{}{"feedback": "forgot"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown feedback",
			payload:    map[string]interface{}{"feedback": "maybe"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing feedback",
			payload:    map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "session already complete",
			payload:    map[string]interface{}{"feedback": "remembered"},
			serviceErr: service.ErrSessionComplete,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "session not found",
			payload:    map[string]interface{}{"feedback": "remembered"},
			serviceErr: service.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionService := &mocks.MockSessionService{
				AnswerFn: func(
					ctx context.Context,
					gotUserID, gotSessionID uuid.UUID,
					feedback domain.ReviewFeedback,
				) (*service.SessionSnapshot, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					assert.Equal(t, sessionID, gotSessionID)
					snap := testSnapshot(scopeID, nil, 0)
					snap.ID = gotSessionID
					snap.State = service.SessionComplete
					snap.Answered = 1
					return snap, nil
				},
			}
			handler := NewSessionHandler(sessionService)

			req := newHandlerRequest(t, "POST", "/sessions/"+sessionID.String()+"/answer",
				tt.payload, userID, map[string]string{"id": sessionID.String()})
			recorder := httptest.NewRecorder()
			handler.Answer(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp SessionResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "complete", resp.State)
				assert.Equal(t, 1, resp.Answered)
				assert.Nil(t, resp.CurrentCard)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()
	scopeID := uuid.New()
	deadline := time.Now().UTC().Add(15 * time.Second)

	sessionService := &mocks.MockSessionService{
		GetFn: func(ctx context.Context, gotUserID, gotSessionID uuid.UUID) (*service.SessionSnapshot, error) {
			if gotSessionID != sessionID {
				return nil, service.ErrSessionNotFound
			}
			snap := testSnapshot(scopeID, nil, 3)
			snap.ID = sessionID
			snap.Mode = service.ModeBlitz
			snap.CardDeadline = &deadline
			return snap, nil
		},
	}
	handler := NewSessionHandler(sessionService)

	t.Run("found", func(t *testing.T) {
		req := newHandlerRequest(t, "GET", "/sessions/"+sessionID.String(), nil, userID,
			map[string]string{"id": sessionID.String()})
		recorder := httptest.NewRecorder()
		handler.Get(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp SessionResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "blitz", resp.Mode)
		require.NotNil(t, resp.CardDeadline)
		assert.WithinDuration(t, deadline, *resp.CardDeadline, time.Second)
	})

	t.Run("unknown session", func(t *testing.T) {
		otherID := uuid.New()
		req := newHandlerRequest(t, "GET", "/sessions/"+otherID.String(), nil, userID,
			map[string]string{"id": otherID.String()})
		recorder := httptest.NewRecorder()
		handler.Get(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestCheckTypedAnswer(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	sessionService := &mocks.MockSessionService{
		CheckTypedAnswerFn: func(ctx context.Context, gotUserID, gotSessionID uuid.UUID, answer string) (bool, error) {
			return answer == "house", nil
		},
	}
	handler := NewSessionHandler(sessionService)

	tests := []struct {
		name        string
		answer      string
		wantCorrect bool
	}{
		{name: "accepted", answer: "house", wantCorrect: true},
		{name: "rejected", answer: "mouse", wantCorrect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newHandlerRequest(t, "POST", "/sessions/"+sessionID.String()+"/typed",
				map[string]interface{}{"answer": tt.answer}, userID,
				map[string]string{"id": sessionID.String()})
			recorder := httptest.NewRecorder()
			handler.CheckTyped(recorder, req)

			require.Equal(t, http.StatusOK, recorder.Code)
			var resp TypedAnswerResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
			assert.Equal(t, tt.wantCorrect, resp.Correct)
		})
	}
}

func TestGuessOptions(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()
	options := []string{"dog", "house", "cat", "tree"}

	sessionService := &mocks.MockSessionService{
		GuessOptionsFn: func(ctx context.Context, gotUserID, gotSessionID uuid.UUID) ([]string, error) {
			return options, nil
		},
	}
	handler := NewSessionHandler(sessionService)

	req := newHandlerRequest(t, "GET", "/sessions/"+sessionID.String()+"/options", nil, userID,
		map[string]string{"id": sessionID.String()})
	recorder := httptest.NewRecorder()
	handler.GuessOptions(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp GuessOptionsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, options, resp.Options)
}

func TestEndSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("ended", func(t *testing.T) {
		called := false
		sessionService := &mocks.MockSessionService{
			EndFn: func(ctx context.Context, gotUserID, gotSessionID uuid.UUID) error {
				called = true
				return nil
			},
		}
		handler := NewSessionHandler(sessionService)

		req := newHandlerRequest(t, "DELETE", "/sessions/"+sessionID.String(), nil, userID,
			map[string]string{"id": sessionID.String()})
		recorder := httptest.NewRecorder()
		handler.End(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.True(t, called)
	})

	t.Run("unknown session", func(t *testing.T) {
		sessionService := &mocks.MockSessionService{
			EndFn: func(ctx context.Context, gotUserID, gotSessionID uuid.UUID) error {
				return service.ErrSessionNotFound
			},
		}
		handler := NewSessionHandler(sessionService)

		req := newHandlerRequest(t, "DELETE", "/sessions/"+sessionID.String(), nil, userID,
			map[string]string{"id": sessionID.String()})
		recorder := httptest.NewRecorder()
		handler.End(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
