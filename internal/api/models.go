package api

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
)

// Authentication payloads.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at"`
}

// Deck tree payloads.

// CreateNodeRequest defines the payload for creating a deck or folder.
type CreateNodeRequest struct {
	Title    string     `json:"title"     validate:"required,min=1,max=120"`
	Type     string     `json:"type"      validate:"required,oneof=deck folder"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// RenameNodeRequest defines the payload for renaming a node.
type RenameNodeRequest struct {
	Title string `json:"title" validate:"required,min=1,max=120"`
}

// MoveNodeRequest defines the payload for reparenting a node. A null
// parent_id moves the node to the root level.
type MoveNodeRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// NodeResponse is the API representation of a deck tree node. Children are
// populated only on the tree endpoint.
type NodeResponse struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	ParentID  *uuid.UUID      `json:"parent_id,omitempty"`
	CardCount int             `json:"card_count"`
	DueCount  int             `json:"due_count"`
	Progress  float64         `json:"progress"`
	CreatedAt time.Time       `json:"created_at"`
	Children  []*NodeResponse `json:"children,omitempty"`
}

// Card payloads.

// CardRequest defines the payload for creating or updating a card.
type CardRequest struct {
	Front         string `json:"front"         validate:"required,min=1"`
	Back          string `json:"back"          validate:"required,min=1"`
	Transcription string `json:"transcription" validate:"omitempty,max=500"`
	Example       string `json:"example"       validate:"omitempty,max=2000"`
	ImageURL      string `json:"image_url"     validate:"omitempty,url"`
}

// CardResponse is the API representation of a card.
type CardResponse struct {
	ID            uuid.UUID `json:"id"`
	DeckID        uuid.UUID `json:"deck_id"`
	Front         string    `json:"front"`
	Back          string    `json:"back"`
	Transcription string    `json:"transcription,omitempty"`
	Example       string    `json:"example,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	DueDate       time.Time `json:"due_date"`
	Interval      int       `json:"interval"`
	EaseFactor    float64   `json:"ease_factor"`
	Repetitions   int       `json:"repetitions"`
	Mastered      bool      `json:"mastered"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session payloads.

// StartSessionRequest defines the payload for starting a quiz session.
// Selector and mode fall back to "due" and "sr" when omitted.
type StartSessionRequest struct {
	ScopeID  uuid.UUID `json:"scope_id" validate:"required"`
	Selector string    `json:"selector" validate:"omitempty,oneof=due new review_all"`
	Mode     string    `json:"mode"     validate:"omitempty,oneof=sr simple blitz"`
}

// AnswerRequest defines the payload for answering the current card.
type AnswerRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=forgot remembered"`
}

// TypedAnswerRequest defines the payload for checking a typed answer.
type TypedAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// TypedAnswerResponse reports whether a typed answer was accepted.
type TypedAnswerResponse struct {
	Correct bool `json:"correct"`
}

// GuessOptionsResponse carries the shuffled multiple-choice options for the
// current card.
type GuessOptionsResponse struct {
	Options []string `json:"options"`
}

// SessionResponse is the API representation of a quiz session.
type SessionResponse struct {
	ID           uuid.UUID     `json:"id"`
	ScopeID      uuid.UUID     `json:"scope_id"`
	Mode         string        `json:"mode"`
	Selector     string        `json:"selector"`
	State        string        `json:"state"`
	Remaining    int           `json:"remaining"`
	Answered     int           `json:"answered"`
	CurrentCard  *CardResponse `json:"current_card,omitempty"`
	CardDeadline *time.Time    `json:"card_deadline,omitempty"`
}

// Conversions.

func toNodeResponse(node *domain.DeckNode) *NodeResponse {
	return &NodeResponse{
		ID:        node.ID,
		Title:     node.Title,
		Type:      string(node.Type),
		ParentID:  node.ParentID,
		CardCount: node.CardCount,
		DueCount:  node.DueCount,
		Progress:  node.Progress,
		CreatedAt: node.CreatedAt,
	}
}

// toNodeTree assembles the flat node list into nested roots. Nodes whose
// parent is missing from the list surface as roots rather than vanishing.
// Siblings are sorted by title for stable output.
func toNodeTree(nodes []*domain.DeckNode) []*NodeResponse {
	byID := make(map[uuid.UUID]*NodeResponse, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = toNodeResponse(n)
	}

	var roots []*NodeResponse
	for _, n := range nodes {
		resp := byID[n.ID]
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok && parent != resp {
				parent.Children = append(parent.Children, resp)
				continue
			}
		}
		roots = append(roots, resp)
	}

	var sortChildren func([]*NodeResponse)
	sortChildren = func(level []*NodeResponse) {
		sort.Slice(level, func(i, j int) bool { return level[i].Title < level[j].Title })
		for _, n := range level {
			sortChildren(n.Children)
		}
	}
	sortChildren(roots)
	return roots
}

func toCardResponse(card *domain.Card) *CardResponse {
	return &CardResponse{
		ID:            card.ID,
		DeckID:        card.DeckID,
		Front:         card.Front,
		Back:          card.Back,
		Transcription: card.Transcription,
		Example:       card.Example,
		ImageURL:      card.ImageURL,
		DueDate:       card.DueDate,
		Interval:      card.Interval,
		EaseFactor:    card.EaseFactor,
		Repetitions:   card.Repetitions,
		Mastered:      card.IsMastered(),
		CreatedAt:     card.CreatedAt,
	}
}

func toCardResponses(cards []*domain.Card) []*CardResponse {
	out := make([]*CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	return out
}

func toSessionResponse(snap *service.SessionSnapshot) *SessionResponse {
	resp := &SessionResponse{
		ID:           snap.ID,
		ScopeID:      snap.ScopeID,
		Mode:         string(snap.Mode),
		Selector:     string(snap.Selector),
		State:        string(snap.State),
		Remaining:    snap.Remaining,
		Answered:     snap.Answered,
		CardDeadline: snap.CardDeadline,
	}
	if snap.CurrentCard != nil {
		resp.CurrentCard = toCardResponse(snap.CurrentCard)
	}
	return resp
}
