package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
)

// ProgressStore defines the interface for per-user bookmark and
// known/unknown progress persistence. Callers are responsible for
// verifying that the user exists; these operations assume a valid user ID.
type ProgressStore interface {
	// ToggleBookmark adds the card to the user's bookmark set if absent,
	// or removes it if present, and returns the resulting set.
	ToggleBookmark(ctx context.Context, userID, cardID uuid.UUID) ([]uuid.UUID, error)

	// SetProgress marks the card as known or unknown for the user. A card
	// is in at most one of the two sets: implementations must store a
	// single membership per (user, card) so the sets can never overlap.
	// Returns the user's resulting progress.
	SetProgress(ctx context.Context, userID, cardID uuid.UUID, known bool) (*domain.Progress, error)

	// GetProgress returns the user's known and unknown card sets.
	GetProgress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error)

	// GetBookmarks returns the user's bookmarked card IDs, most recently
	// bookmarked first.
	GetBookmarks(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
