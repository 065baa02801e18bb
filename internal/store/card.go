package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
)

// Sort keys accepted by CardQuery. The zero value sorts newest first.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortViews  = "views"
)

// Pagination bounds applied by CardQuery.Normalize.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// CardQuery is the normalized form of every card read path (list-all,
// by-topic, by-category, search, own-cards, random). All list endpoints
// see public cards only unless OwnerID restricts the query to a single
// user's cards, in which case private cards are included too.
type CardQuery struct {
	// Topic, Category, and Difficulty are equality filters, applied only
	// when non-empty.
	Topic      string
	Category   string
	Difficulty string

	// Keyword matches case-insensitively against question, answer, and
	// topic, or exactly (case-folded) against any tag.
	Keyword string

	// OwnerID restricts results to cards created by this user.
	OwnerID *uuid.UUID

	// PublicOnly limits results to cards with isPublic = true.
	PublicOnly bool

	// SortKey is one of SortNewest, SortOldest, or SortViews.
	SortKey string

	// Page is 1-indexed. Limit is the page size.
	Page  int
	Limit int
}

// Normalize applies defaults and bounds: page >= 1, 1 <= limit <= MaxLimit,
// and a valid sort key. It returns the query for chaining.
func (q CardQuery) Normalize() CardQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch q.SortKey {
	case SortNewest, SortOldest, SortViews:
	default:
		q.SortKey = SortNewest
	}
	return q
}

// Offset returns the number of records to skip for the query's page.
func (q CardQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CardStore defines the interface for flashcard persistence.
type CardStore interface {
	// Create saves a new card to the store. The card must be valid
	// according to domain validation rules.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update persists the full card record.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete physically removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of cards matching the query plus the total
	// number of matching records. The query must be normalized.
	List(ctx context.Context, query CardQuery) ([]*domain.Card, int64, error)

	// Random returns one uniformly random card matching the query's
	// filters using a single counted-offset fetch, without materializing
	// the full result set. Returns ErrCardNotFound if nothing matches.
	Random(ctx context.Context, query CardQuery) (*domain.Card, error)

	// IncrementViewCount atomically increments the card's view counter.
	// The increment happens in the database, never as a read-modify-write
	// round trip, so concurrent views on the same card are never lost.
	// Returns ErrCardNotFound if the card does not exist.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	// RecordAttempt atomically increments the card's correct or incorrect
	// counter, selected by correct. Same atomicity contract as
	// IncrementViewCount. Returns ErrCardNotFound if the card does not exist.
	RecordAttempt(ctx context.Context, id uuid.UUID, correct bool) error
}
