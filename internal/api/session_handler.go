package api

import (
	"net/http"

	"github.com/mnemosyne-app/mnemo-api/internal/api/shared"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// SessionHandler handles quiz session API requests.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	if sessionService == nil {
		panic("sessionService cannot be nil")
	}
	return &SessionHandler{sessionService: sessionService}
}

// Start handles POST /sessions. An empty scope yields 204 with no session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.sessionService.Start(
		r.Context(),
		userID,
		req.ScopeID,
		service.CardSelector(req.Selector),
		service.SessionMode(req.Mode),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toSessionResponse(snap))
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	snap, err := h.sessionService.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(snap))
}

// Answer handles POST /sessions/{id}/answer. The current card is
// rescheduled per the feedback and the queue advances.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := h.sessionService.Answer(
		r.Context(),
		userID,
		sessionID,
		domain.ReviewFeedback(req.Feedback),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toSessionResponse(snap))
}

// CheckTyped handles POST /sessions/{id}/typed. It grades a typed answer
// against the current card without advancing the queue.
func (h *SessionHandler) CheckTyped(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req TypedAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	correct, err := h.sessionService.CheckTypedAnswer(r.Context(), userID, sessionID, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TypedAnswerResponse{Correct: correct})
}

// GuessOptions handles GET /sessions/{id}/options.
func (h *SessionHandler) GuessOptions(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	options, err := h.sessionService.GuessOptions(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build options")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GuessOptionsResponse{Options: options})
}

// End handles DELETE /sessions/{id}.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sessionService.End(r.Context(), userID, sessionID); err != nil {
		HandleAPIError(w, r, err, "Failed to end session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
