package api

import (
	"net/http"

	"github.com/mnemosyne-app/mnemo-api/internal/api/shared"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// CardHandler handles single-card API requests.
type CardHandler struct {
	deckService service.DeckService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(deckService service.DeckService) *CardHandler {
	if deckService == nil {
		panic("deckService cannot be nil")
	}
	return &CardHandler{deckService: deckService}
}

// GetCard handles GET /cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.deckService.GetCard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toCardResponse(card))
}

// UpdateCard handles PUT /cards/{id}. Content fields are replaced; the
// card's scheduling state is untouched.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.deckService.UpdateCard(r.Context(), userID, cardID, cardContentFromRequest(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toCardResponse(card))
}

// DeleteCard handles DELETE /cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.DeleteCard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
