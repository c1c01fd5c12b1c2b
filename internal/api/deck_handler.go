package api

import (
	"net/http"

	"github.com/mnemosyne-app/mnemo-api/internal/api/shared"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// DeckHandler handles deck tree and card collection API requests.
type DeckHandler struct {
	deckService service.DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService service.DeckService) *DeckHandler {
	if deckService == nil {
		panic("deckService cannot be nil")
	}
	return &DeckHandler{deckService: deckService}
}

// GetTree handles GET /decks/tree. It returns the user's full deck
// hierarchy with aggregates, assembled into nested nodes.
func (h *DeckHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	nodes, err := h.deckService.ListNodes(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load deck tree")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toNodeTree(nodes))
}

// CreateNode handles POST /decks.
func (h *DeckHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateNodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	node, err := h.deckService.CreateNode(
		r.Context(),
		userID,
		req.Title,
		domain.NodeType(req.Type),
		req.ParentID,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create node")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toNodeResponse(node))
}

// GetNode handles GET /decks/{id}.
func (h *DeckHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	userID, nodeID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	node, err := h.deckService.GetNode(r.Context(), userID, nodeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get node")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toNodeResponse(node))
}

// Rename handles PATCH /decks/{id}.
func (h *DeckHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, nodeID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req RenameNodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	node, err := h.deckService.RenameNode(r.Context(), userID, nodeID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename node")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toNodeResponse(node))
}

// Move handles POST /decks/{id}/move.
func (h *DeckHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, nodeID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req MoveNodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	node, err := h.deckService.MoveNode(r.Context(), userID, nodeID, req.ParentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move node")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toNodeResponse(node))
}

// DeleteNode handles DELETE /decks/{id}. The node, its descendants and
// their cards are removed together.
func (h *DeckHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID, nodeID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.DeleteNode(r.Context(), userID, nodeID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete node")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCards handles GET /decks/{id}/cards.
func (h *DeckHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	cards, err := h.deckService.ListDeckCards(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toCardResponses(cards))
}

// CreateCard handles POST /decks/{id}/cards.
func (h *DeckHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.deckService.CreateCard(r.Context(), userID, deckID, cardContentFromRequest(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toCardResponse(card))
}

func cardContentFromRequest(req CardRequest) service.CardContent {
	return service.CardContent{
		Front:         req.Front,
		Back:          req.Back,
		Transcription: req.Transcription,
		Example:       req.Example,
		ImageURL:      req.ImageURL,
	}
}
