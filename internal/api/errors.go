package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mnemosyne-app/mnemo-api/internal/api/shared"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/domain/srs"
	"github.com/mnemosyne-app/mnemo-api/internal/service"
	"github.com/mnemosyne-app/mnemo-api/internal/service/auth"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. This
// keeps internal error types and messages from leaking to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNodeNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrDuplicateTitle),
		errors.Is(err, service.ErrSessionComplete):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidNodeType),
		errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, srs.ErrInvalidFeedback),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrParentNotFolder),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, service.ErrCardInFolder),
		errors.Is(err, service.ErrInvalidSessionMode),
		errors.Is(err, service.ErrInvalidCardSelector):
		return http.StatusBadRequest

	// An empty session start has nothing to study rather than a failure.
	case errors.Is(err, service.ErrEmptySession):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for an error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNodeNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrDuplicateTitle):
		return "A deck or folder with this title already exists here"

	case errors.Is(err, service.ErrSessionComplete):
		return "Session is already complete"

	case errors.Is(err, service.ErrParentNotFolder):
		return "Parent must be a folder"

	case errors.Is(err, service.ErrInvalidMove):
		return "Cannot move a folder into itself or its descendants"

	case errors.Is(err, service.ErrCardInFolder):
		return "Cards can only be added to decks"

	case errors.Is(err, service.ErrInvalidSessionMode):
		return "Invalid session mode"

	case errors.Is(err, service.ErrInvalidCardSelector):
		return "Invalid card selector"

	case errors.Is(err, srs.ErrInvalidQuality):
		return "Invalid review quality"

	case errors.Is(err, srs.ErrInvalidFeedback):
		return "Feedback must be \"forgot\" or \"remembered\""

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidNodeType),
		errors.Is(err, store.ErrInvalidEntity):
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Sprintf("Invalid %s", vErr.Field)
		}
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and a sanitized message,
// logs the underlying error, and writes the response. An empty fallback
// message defers entirely to GetSafeErrorMessage.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	message := GetSafeErrorMessage(err)
	if message == "An unexpected error occurred" && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError converts a validator error into a user-friendly
// message without echoing submitted values.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example: "Key: 'LoginRequest.Email' Error:Field validation for
	// 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
