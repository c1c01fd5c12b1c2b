package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/domain/srs"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
	"github.com/mnemosyne-app/mnemo-api/internal/service/auth"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "authentication error",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped authentication error",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid credentials",
			err:            auth.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "ownership error",
			err:            service.ErrNotOwned,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "node not found",
			err:            store.ErrNodeNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "wrapped node not found",
			err:            fmt.Errorf("%w: parent node", store.ErrNodeNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "session not found",
			err:            service.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "duplicate title",
			err:            service.ErrDuplicateTitle,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "session complete",
			err:            service.ErrSessionComplete,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "parent not folder",
			err:            service.ErrParentNotFolder,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid move",
			err:            service.ErrInvalidMove,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "card in folder",
			err:            service.ErrCardInFolder,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid feedback",
			err:            srs.ErrInvalidFeedback,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error",
			err:            domain.NewValidationError("title", "is required", domain.ErrValidation),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty session",
			err:            service.ErrEmptySession,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "unknown error",
			err:            errors.New("database exploded"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "An unexpected error occurred",
		},
		{
			name:     "token error collapses to generic message",
			err:      auth.ErrExpiredToken,
			expected: "Invalid token",
		},
		{
			name:     "node not found",
			err:      store.ErrNodeNotFound,
			expected: "Deck not found",
		},
		{
			name:     "duplicate title",
			err:      service.ErrDuplicateTitle,
			expected: "A deck or folder with this title already exists here",
		},
		{
			name:     "invalid move",
			err:      service.ErrInvalidMove,
			expected: "Cannot move a folder into itself or its descendants",
		},
		{
			name:     "validation error names the field",
			err:      domain.NewValidationError("title", "is required", domain.ErrValidation),
			expected: "Invalid title",
		},
		{
			name:     "internal details never leak",
			err:      errors.New("pq: connection refused user=postgres password=secret"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		expected string
	}{
		{
			name:     "required field",
			errMsg:   "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag",
			expected: "Invalid Email: required field",
		},
		{
			name:     "min length",
			errMsg:   "Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag",
			expected: "Invalid Password: too short",
		},
		{
			name:     "oneof",
			errMsg:   "Key: 'StartSessionRequest.Mode' Error:Field validation for 'Mode' failed on the 'oneof' tag",
			expected: "Invalid Mode: invalid value",
		},
		{
			name:     "unrecognized shape",
			errMsg:   "something unexpected",
			expected: "Validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeValidationError(errors.New(tt.errMsg)))
		})
	}
}
