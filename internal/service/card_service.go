package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// CreateCardInput holds the fields accepted when creating a card.
type CreateCardInput struct {
	Question    string
	Answer      string
	Topic       string
	Category    string
	Difficulty  string
	Tags        []string
	Hint        string
	Explanation string
	ImageURL    string
	IsPublic    *bool
}

// UpdateCardInput holds the optional fields of a partial card update.
// Nil pointers leave the corresponding field unchanged.
type UpdateCardInput struct {
	Question    *string
	Answer      *string
	Topic       *string
	Category    *string
	Difficulty  *string
	Tags        []string
	Hint        *string
	Explanation *string
	ImageURL    *string
	IsPublic    *bool
}

// ListCardsInput holds the raw filter/sort/page parameters of a card list
// request before normalization.
type ListCardsInput struct {
	Topic      string
	Category   string
	Difficulty string
	Keyword    string
	Sort       string
	Page       int
	Limit      int

	// Owner restricts the listing to this user's cards, including private
	// ones. When nil, only public cards are returned.
	Owner *uuid.UUID
}

// Pagination describes one page of a list result.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// CardService implements flashcard use cases on top of a CardStore: CRUD
// with owner-only mutation, the normalized query façade shared by every
// read path, random selection, and attempt tracking.
type CardService struct {
	cards  store.CardStore
	logger *slog.Logger
}

// NewCardService creates a new CardService.
func NewCardService(cards store.CardStore, logger *slog.Logger) *CardService {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardService{
		cards:  cards,
		logger: logger.With(slog.String("component", "card_service")),
	}
}

// Create validates the input and persists a new card. createdBy may be nil
// for anonymous cards.
func (s *CardService) Create(
	ctx context.Context,
	input CreateCardInput,
	createdBy *uuid.UUID,
) (*domain.Card, error) {
	card, err := domain.NewCard(input.Question, input.Answer, input.Topic, createdBy)
	if err != nil {
		return nil, err
	}

	card.Category = strings.TrimSpace(input.Category)
	card.Hint = strings.TrimSpace(input.Hint)
	card.Explanation = strings.TrimSpace(input.Explanation)
	card.ImageURL = strings.TrimSpace(input.ImageURL)
	card.SetTags(input.Tags)
	if input.IsPublic != nil {
		card.IsPublic = *input.IsPublic
	}
	if input.Difficulty != "" {
		card.Difficulty = domain.Difficulty(input.Difficulty)
		if !card.Difficulty.IsValid() {
			return nil, domain.ErrInvalidDifficulty
		}
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Get returns a single card by ID with no side effects.
func (s *CardService) Get(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.cards.GetByID(ctx, id)
}

// Update applies a partial update to a card. The existence check runs
// before the ownership check so a missing card yields not-found rather
// than leaking ownership information. Cards without an owner are editable
// by any authenticated requester; that compatibility rule keeps cards
// created before accounts existed usable.
func (s *CardService) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateCardInput,
	requester uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeOwner(card, requester); err != nil {
		log.Warn("card update denied",
			slog.String("card_id", id.String()),
			slog.String("requester", requester.String()))
		return nil, err
	}

	applyCardUpdate(card, input)
	if err := card.Validate(); err != nil {
		return nil, err
	}
	card.Touch()

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// Delete removes a card after the same existence-then-ownership checks as
// Update. Returns the deleted card.
func (s *CardService) Delete(
	ctx context.Context,
	id uuid.UUID,
	requester uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeOwner(card, requester); err != nil {
		log.Warn("card delete denied",
			slog.String("card_id", id.String()),
			slog.String("requester", requester.String()))
		return nil, err
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return nil, err
	}

	log.Info("card deleted", slog.String("card_id", id.String()))
	return card, nil
}

// List returns one page of cards matching the input. Every list path
// (list-all, by-topic, by-category, own-cards) funnels through this single
// normalization point.
func (s *CardService) List(
	ctx context.Context,
	input ListCardsInput,
) ([]*domain.Card, Pagination, error) {
	query := s.buildQuery(input)

	cards, total, err := s.cards.List(ctx, query)
	if err != nil {
		return nil, Pagination{}, err
	}

	return cards, paginate(total, query), nil
}

// Search is List with a mandatory keyword. An empty keyword is a bad
// request, never an unfiltered listing.
func (s *CardService) Search(
	ctx context.Context,
	input ListCardsInput,
) ([]*domain.Card, Pagination, error) {
	if strings.TrimSpace(input.Keyword) == "" {
		return nil, Pagination{}, ErrKeywordRequired
	}
	input.Keyword = strings.TrimSpace(input.Keyword)
	return s.List(ctx, input)
}

// Random picks a uniformly random public card under the optional topic and
// difficulty filters and increments its view count exactly once. When the
// filter matches nothing, no counter is touched.
func (s *CardService) Random(
	ctx context.Context,
	topic, difficulty string,
) (*domain.Card, error) {
	query := s.buildQuery(ListCardsInput{Topic: topic, Difficulty: difficulty})

	card, err := s.cards.Random(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := s.cards.IncrementViewCount(ctx, card.ID); err != nil {
		return nil, err
	}
	card.ViewCount++

	return card, nil
}

// RecordAttempt atomically bumps the card's correct or incorrect counter.
func (s *CardService) RecordAttempt(ctx context.Context, id uuid.UUID, correct bool) error {
	return s.cards.RecordAttempt(ctx, id, correct)
}

// buildQuery translates raw list parameters into a normalized CardQuery.
func (s *CardService) buildQuery(input ListCardsInput) store.CardQuery {
	query := store.CardQuery{
		Topic:      strings.TrimSpace(input.Topic),
		Category:   strings.TrimSpace(input.Category),
		Difficulty: strings.TrimSpace(input.Difficulty),
		Keyword:    strings.TrimSpace(input.Keyword),
		SortKey:    input.Sort,
		Page:       input.Page,
		Limit:      input.Limit,
		PublicOnly: input.Owner == nil,
		OwnerID:    input.Owner,
	}
	return query.Normalize()
}

// authorizeOwner permits mutation when the card has no owner or the owner
// is the requester, and returns domain.ErrForbidden otherwise.
func authorizeOwner(card *domain.Card, requester uuid.UUID) error {
	if card.CreatedBy == nil {
		return nil
	}
	if *card.CreatedBy != requester {
		return domain.ErrForbidden
	}
	return nil
}

// applyCardUpdate copies the set fields of input onto card.
func applyCardUpdate(card *domain.Card, input UpdateCardInput) {
	if input.Question != nil {
		card.Question = strings.TrimSpace(*input.Question)
	}
	if input.Answer != nil {
		card.Answer = strings.TrimSpace(*input.Answer)
	}
	if input.Topic != nil {
		card.Topic = strings.TrimSpace(*input.Topic)
	}
	if input.Category != nil {
		card.Category = strings.TrimSpace(*input.Category)
	}
	if input.Difficulty != nil {
		card.Difficulty = domain.Difficulty(*input.Difficulty)
	}
	if input.Tags != nil {
		card.SetTags(input.Tags)
	}
	if input.Hint != nil {
		card.Hint = strings.TrimSpace(*input.Hint)
	}
	if input.Explanation != nil {
		card.Explanation = strings.TrimSpace(*input.Explanation)
	}
	if input.ImageURL != nil {
		card.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.IsPublic != nil {
		card.IsPublic = *input.IsPublic
	}
}

// paginate derives the page descriptor for a result set.
func paginate(total int64, query store.CardQuery) Pagination {
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(query.Limit)))
	}
	return Pagination{
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
		Pages: pages,
	}
}
