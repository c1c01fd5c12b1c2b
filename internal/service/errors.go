package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer maps this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrDuplicateTitle indicates a deck node with the same title already
	// exists under the same parent. Maps to HTTP 409 Conflict.
	ErrDuplicateTitle = errors.New("a node with this title already exists under the same parent")

	// ErrParentNotFolder indicates an attempt to place a node under a
	// deck-type node. Only folders may contain children.
	ErrParentNotFolder = errors.New("parent node must be a folder")

	// ErrInvalidMove indicates an attempt to move a node under itself or one
	// of its own descendants, which would create a cycle in the tree.
	ErrInvalidMove = errors.New("cannot move a node under itself or its descendants")

	// ErrCardInFolder indicates an attempt to attach a card to a folder-type
	// node. Cards belong to deck-type nodes only.
	ErrCardInFolder = errors.New("cards can only be added to deck nodes")

	// ErrSessionNotFound indicates the referenced quiz session does not
	// exist or has already ended. Maps to HTTP 404 Not Found.
	ErrSessionNotFound = errors.New("quiz session not found")

	// ErrSessionComplete indicates an answer was submitted to a session
	// whose queue is already empty.
	ErrSessionComplete = errors.New("quiz session is already complete")

	// ErrEmptySession indicates a session start matched no cards, so there
	// is nothing to study.
	ErrEmptySession = errors.New("no cards match the requested session scope and selector")

	// ErrInvalidSessionMode indicates an unrecognized session mode.
	ErrInvalidSessionMode = errors.New("invalid session mode")

	// ErrInvalidCardSelector indicates an unrecognized card selector.
	ErrInvalidCardSelector = errors.New("invalid card selector")
)
