package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/api/middleware"
	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/service"
)

// getUserIDFromContext extracts the authenticated user ID placed in the
// context by the auth middleware. Returns domain.ErrUnauthorized when the
// request carries no authenticated user.
func getUserIDFromContext(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return userID, nil
}

// getPathUUID parses the named chi URL parameter as a UUID.
func getPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid UUID", domain.ErrInvalidID)
	}
	return id, nil
}

// pathParam returns the named chi URL parameter verbatim.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// listInputFromQuery reads the shared filter/sort/page parameters from the
// request query string. Out-of-range page and limit values are left to
// CardQuery normalization to clamp.
func listInputFromQuery(r *http.Request) service.ListCardsInput {
	q := r.URL.Query()
	return service.ListCardsInput{
		Topic:      q.Get("topic"),
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Keyword:    q.Get("keyword"),
		Sort:       q.Get("sort"),
		Page:       parseIntParam(q.Get("page")),
		Limit:      parseIntParam(q.Get("limit")),
	}
}

// parseIntParam converts a query parameter to int, treating absent or
// malformed values as zero so normalization applies the defaults.
func parseIntParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
