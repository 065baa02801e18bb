package api

import (
	"errors"
	"net/http"

	"github.com/flashquiz/flashquiz-api/internal/api/shared"
	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/service"
	"github.com/flashquiz/flashquiz-api/internal/service/auth"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the error type, so handlers never leak internal error taxonomy to
// clients. Existence is always checked before ownership, so not-found wins
// over forbidden by construction.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Duplicate registration reports as a plain validation failure.
	case store.IsDuplicateError(err):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrKeywordRequired),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error. Validation errors keep their own messages (they describe client
// input, not internals); everything else maps to a fixed phrase.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized"
	case errors.Is(err, domain.ErrForbidden):
		return "Not authorized to modify this flashcard"
	case errors.Is(err, store.ErrCardNotFound):
		return "Flashcard not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case store.IsNotFoundError(err):
		return "Not found"
	case errors.Is(err, store.ErrEmailExists):
		return "User with this email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username is already taken"
	case errors.Is(err, service.ErrKeywordRequired):
		return "Please provide a search keyword"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		isDomainValidationError(err):
		return err.Error()
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status and safe message and writes
// the response, logging the full error. fallbackMessage overrides the
// derived message when non-empty and the error is a server error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && status == http.StatusInternalServerError {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// isDomainValidationError reports whether err is one of the domain's
// field-level validation sentinels.
func isDomainValidationError(err error) bool {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	return errors.Is(err, domain.ErrQuestionRequired) ||
		errors.Is(err, domain.ErrAnswerRequired) ||
		errors.Is(err, domain.ErrTopicRequired) ||
		errors.Is(err, domain.ErrInvalidDifficulty) ||
		errors.Is(err, domain.ErrUsernameRequired) ||
		errors.Is(err, domain.ErrEmptyEmail) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrPasswordTooShort) ||
		errors.Is(err, domain.ErrPasswordTooLong) ||
		errors.Is(err, domain.ErrEmptyPassword)
}
