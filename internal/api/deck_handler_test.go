package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemosyne-app/mnemo-api/internal/api/shared"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/mocks"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// newHandlerRequest builds an authenticated JSON request with chi URL
// params wired into the context. userID uuid.Nil leaves the request
// unauthenticated; params may be nil.
func newHandlerRequest(
	t *testing.T,
	method, target string,
	body interface{},
	userID uuid.UUID,
	params map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for name, value := range params {
		rctx.URLParams.Add(name, value)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	}
	return req
}

func testTreeNode(userID uuid.UUID, title string, nodeType domain.NodeType, parentID *uuid.UUID) *domain.DeckNode {
	return &domain.DeckNode{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Type:      nodeType,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestGetTree(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	folder := testTreeNode(userID, "Languages", domain.NodeTypeFolder, nil)
	deck := testTreeNode(userID, "Spanish", domain.NodeTypeDeck, &folder.ID)
	rootDeck := testTreeNode(userID, "Chemistry", domain.NodeTypeDeck, nil)

	deckService := &mocks.MockDeckService{
		ListNodesFn: func(ctx context.Context, gotUserID uuid.UUID) ([]*domain.DeckNode, error) {
			assert.Equal(t, userID, gotUserID)
			return []*domain.DeckNode{deck, rootDeck, folder}, nil
		},
	}
	handler := NewDeckHandler(deckService)

	req := newHandlerRequest(t, "GET", "/decks/tree", nil, userID, nil)
	recorder := httptest.NewRecorder()
	handler.GetTree(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var roots []*NodeResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&roots))
	require.Len(t, roots, 2)

	// Roots are sorted by title.
	assert.Equal(t, "Chemistry", roots[0].Title)
	assert.Equal(t, "Languages", roots[1].Title)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "Spanish", roots[1].Children[0].Title)
	assert.Empty(t, roots[0].Children)
}

func TestGetTree_RequiresAuth(t *testing.T) {
	t.Parallel()

	handler := NewDeckHandler(&mocks.MockDeckService{})
	req := newHandlerRequest(t, "GET", "/decks/tree", nil, uuid.Nil, nil)
	recorder := httptest.NewRecorder()

	handler.GetTree(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateNode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	parentID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "valid deck",
			payload:    map[string]interface{}{"title": "Spanish", "type": "deck"},
			wantStatus: http.StatusCreated,
		},
		{
			name: "valid folder under parent",
			payload: map[string]interface{}{
				"title":     "Languages",
				"type":      "folder",
				"parent_id": parentID.String(),
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown node type",
			payload:    map[string]interface{}{"title": "Spanish", "type": "notebook"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing title",
			payload:    map[string]interface{}{"type": "deck"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate sibling title",
			payload:    map[string]interface{}{"title": "Spanish", "type": "deck"},
			serviceErr: service.ErrDuplicateTitle,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "parent is a deck",
			payload:    map[string]interface{}{"title": "Spanish", "type": "deck"},
			serviceErr: service.ErrParentNotFolder,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deckService := &mocks.MockDeckService{
				CreateNodeFn: func(
					ctx context.Context,
					gotUserID uuid.UUID,
					title string,
					nodeType domain.NodeType,
					gotParentID *uuid.UUID,
				) (*domain.DeckNode, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					node, err := domain.NewDeckNode(gotUserID, title, nodeType, gotParentID)
					require.NoError(t, err)
					return node, nil
				},
			}
			handler := NewDeckHandler(deckService)

			req := newHandlerRequest(t, "POST", "/decks", tt.payload, userID, nil)
			recorder := httptest.NewRecorder()
			handler.CreateNode(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp NodeResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, tt.payload["title"], resp.Title)
				assert.Equal(t, tt.payload["type"], resp.Type)
			}
		})
	}
}

func TestGetNode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	node := testTreeNode(userID, "Spanish", domain.NodeTypeDeck, nil)
	node.CardCount = 12
	node.DueCount = 3
	node.Progress = 50

	deckService := &mocks.MockDeckService{
		GetNodeFn: func(ctx context.Context, gotUserID, nodeID uuid.UUID) (*domain.DeckNode, error) {
			if nodeID != node.ID {
				return nil, service.ErrNotOwned
			}
			return node, nil
		},
	}
	handler := NewDeckHandler(deckService)

	t.Run("found", func(t *testing.T) {
		req := newHandlerRequest(t, "GET", "/decks/"+node.ID.String(), nil, userID,
			map[string]string{"id": node.ID.String()})
		recorder := httptest.NewRecorder()
		handler.GetNode(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp NodeResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, node.ID, resp.ID)
		assert.Equal(t, 12, resp.CardCount)
		assert.Equal(t, 3, resp.DueCount)
		assert.InDelta(t, 50.0, resp.Progress, 0.001)
	})

	t.Run("not owned", func(t *testing.T) {
		otherID := uuid.New()
		req := newHandlerRequest(t, "GET", "/decks/"+otherID.String(), nil, userID,
			map[string]string{"id": otherID.String()})
		recorder := httptest.NewRecorder()
		handler.GetNode(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := newHandlerRequest(t, "GET", "/decks/not-a-uuid", nil, userID,
			map[string]string{"id": "not-a-uuid"})
		recorder := httptest.NewRecorder()
		handler.GetNode(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRenameNode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	nodeID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "renamed",
			payload:    map[string]interface{}{"title": "Castilian"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty title",
			payload:    map[string]interface{}{"title": ""},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate sibling title",
			payload:    map[string]interface{}{"title": "French"},
			serviceErr: service.ErrDuplicateTitle,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deckService := &mocks.MockDeckService{
				RenameNodeFn: func(ctx context.Context, gotUserID, gotNodeID uuid.UUID, title string) (*domain.DeckNode, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					node := testTreeNode(gotUserID, title, domain.NodeTypeDeck, nil)
					node.ID = gotNodeID
					return node, nil
				},
			}
			handler := NewDeckHandler(deckService)

			req := newHandlerRequest(t, "PATCH", "/decks/"+nodeID.String(), tt.payload, userID,
				map[string]string{"id": nodeID.String()})
			recorder := httptest.NewRecorder()
			handler.Rename(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp NodeResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "Castilian", resp.Title)
			}
		})
	}
}

func TestMoveNode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	nodeID := uuid.New()
	parentID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "moved under folder",
			payload:    map[string]interface{}{"parent_id": parentID.String()},
			wantStatus: http.StatusOK,
		},
		{
			name:       "moved to root",
			payload:    map[string]interface{}{"parent_id": nil},
			wantStatus: http.StatusOK,
		},
		{
			name:       "cycle rejected",
			payload:    map[string]interface{}{"parent_id": parentID.String()},
			serviceErr: service.ErrInvalidMove,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deckService := &mocks.MockDeckService{
				MoveNodeFn: func(ctx context.Context, gotUserID, gotNodeID uuid.UUID, newParentID *uuid.UUID) (*domain.DeckNode, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					node := testTreeNode(gotUserID, "Spanish", domain.NodeTypeDeck, newParentID)
					node.ID = gotNodeID
					return node, nil
				},
			}
			handler := NewDeckHandler(deckService)

			req := newHandlerRequest(t, "POST", "/decks/"+nodeID.String()+"/move", tt.payload, userID,
				map[string]string{"id": nodeID.String()})
			recorder := httptest.NewRecorder()
			handler.Move(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestDeleteNode(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	nodeID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		called := false
		deckService := &mocks.MockDeckService{
			DeleteNodeFn: func(ctx context.Context, gotUserID, gotNodeID uuid.UUID) error {
				called = true
				assert.Equal(t, nodeID, gotNodeID)
				return nil
			},
		}
		handler := NewDeckHandler(deckService)

		req := newHandlerRequest(t, "DELETE", "/decks/"+nodeID.String(), nil, userID,
			map[string]string{"id": nodeID.String()})
		recorder := httptest.NewRecorder()
		handler.DeleteNode(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.True(t, called)
	})

	t.Run("not found", func(t *testing.T) {
		deckService := &mocks.MockDeckService{
			DeleteNodeFn: func(ctx context.Context, gotUserID, gotNodeID uuid.UUID) error {
				return store.ErrNodeNotFound
			},
		}
		handler := NewDeckHandler(deckService)

		req := newHandlerRequest(t, "DELETE", "/decks/"+nodeID.String(), nil, userID,
			map[string]string{"id": nodeID.String()})
		recorder := httptest.NewRecorder()
		handler.DeleteNode(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	deckID := uuid.New()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name: "valid card",
			payload: map[string]interface{}{
				"front":         "la casa",
				"back":          "house",
				"transcription": "[ˈkasa]",
				"example":       "La casa es grande.",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing back",
			payload:    map[string]interface{}{"front": "la casa"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "malformed image url",
			payload: map[string]interface{}{
				"front":     "la casa",
				"back":      "house",
				"image_url": "not a url",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "target is a folder",
			payload:    map[string]interface{}{"front": "la casa", "back": "house"},
			serviceErr: service.ErrCardInFolder,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deckService := &mocks.MockDeckService{
				CreateCardFn: func(
					ctx context.Context,
					gotUserID, gotDeckID uuid.UUID,
					content service.CardContent,
				) (*domain.Card, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					card, err := domain.NewCard(gotUserID, gotDeckID, content.Front, content.Back)
					require.NoError(t, err)
					card.Transcription = content.Transcription
					card.Example = content.Example
					card.ImageURL = content.ImageURL
					return card, nil
				},
			}
			handler := NewDeckHandler(deckService)

			req := newHandlerRequest(t, "POST", "/decks/"+deckID.String()+"/cards", tt.payload, userID,
				map[string]string{"id": deckID.String()})
			recorder := httptest.NewRecorder()
			handler.CreateCard(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp CardResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "la casa", resp.Front)
				assert.Equal(t, "house", resp.Back)
				assert.Equal(t, 0, resp.Interval)
				assert.False(t, resp.Mastered)
			}
		})
	}
}

func TestListCards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	deckID := uuid.New()

	card1, err := domain.NewCard(userID, deckID, "la casa", "house")
	require.NoError(t, err)
	card2, err := domain.NewCard(userID, deckID, "el perro", "dog")
	require.NoError(t, err)

	deckService := &mocks.MockDeckService{
		ListDeckCardsFn: func(ctx context.Context, gotUserID, gotDeckID uuid.UUID) ([]*domain.Card, error) {
			return []*domain.Card{card1, card2}, nil
		},
	}
	handler := NewDeckHandler(deckService)

	req := newHandlerRequest(t, "GET", "/decks/"+deckID.String()+"/cards", nil, userID,
		map[string]string{"id": deckID.String()})
	recorder := httptest.NewRecorder()
	handler.ListCards(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp []*CardResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, card1.ID, resp[0].ID)
	assert.Equal(t, card2.ID, resp[1].ID)
}
