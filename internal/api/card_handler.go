package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/api/middleware"
	"github.com/flashquiz/flashquiz-api/internal/api/shared"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/service"
)

// CardHandler handles flashcard-related HTTP requests.
type CardHandler struct {
	cardService *service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler with its dependencies.
func NewCardHandler(cardService *service.CardService, logger *slog.Logger) *CardHandler {
	if cardService == nil {
		panic("card service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// Create handles POST /api/flashcards. Authentication is optional: an
// authenticated request records the creator, an anonymous one creates an
// ownerless card.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	var createdBy *uuid.UUID
	if userID, ok := middleware.GetUserID(r); ok {
		createdBy = &userID
	}

	card, err := h.cardService.Create(r.Context(), service.CreateCardInput{
		Question:    req.Question,
		Answer:      req.Answer,
		Topic:       req.Topic,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
		Hint:        req.Hint,
		Explanation: req.Explanation,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	}, createdBy)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}

	log.Info("flashcard created", slog.String("card_id", card.ID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, cardToResponse(card))
}

// List handles GET /api/flashcards with optional topic, category,
// difficulty, keyword, sort, page, and limit query parameters.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, page, err := h.cardService.List(r.Context(), listInputFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, cardsToResponse(cards), page)
}

// OwnCards handles GET /api/flashcards/user, listing the authenticated
// user's cards including private ones.
func (h *CardHandler) OwnCards(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	input := listInputFromQuery(r)
	input.Owner = &userID

	cards, page, err := h.cardService.List(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, cardsToResponse(cards), page)
}

// ByTopic handles GET /api/flashcards/topic/{topic}. The path segment wins
// over any topic query parameter.
func (h *CardHandler) ByTopic(w http.ResponseWriter, r *http.Request) {
	input := listInputFromQuery(r)
	input.Topic = pathParam(r, "topic")

	cards, page, err := h.cardService.List(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, cardsToResponse(cards), page)
}

// ByCategory handles GET /api/flashcards/category/{category}.
func (h *CardHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	input := listInputFromQuery(r)
	input.Category = pathParam(r, "category")

	cards, page, err := h.cardService.List(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, cardsToResponse(cards), page)
}

// Search handles GET /api/flashcards/search. A missing or blank keyword is
// a bad request.
func (h *CardHandler) Search(w http.ResponseWriter, r *http.Request) {
	cards, page, err := h.cardService.Search(r.Context(), listInputFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search flashcards")
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, cardsToResponse(cards), page)
}

// Random handles GET /api/flashcards/random with optional topic and
// difficulty filters.
func (h *CardHandler) Random(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	card, err := h.cardService.Random(r.Context(), q.Get("topic"), q.Get("difficulty"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to pick a flashcard")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, cardToResponse(card))
}

// GetByID handles GET /api/flashcards/{id}.
func (h *CardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load flashcard")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, cardToResponse(card))
}

// Update handles PUT /api/flashcards/{id}. Only the card's owner may
// update it; ownerless cards accept updates from any authenticated user.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	card, err := h.cardService.Update(r.Context(), id, service.UpdateCardInput{
		Question:    req.Question,
		Answer:      req.Answer,
		Topic:       req.Topic,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
		Hint:        req.Hint,
		Explanation: req.Explanation,
		ImageURL:    req.ImageURL,
		IsPublic:    req.IsPublic,
	}, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, cardToResponse(card))
}

// Delete handles DELETE /api/flashcards/{id} and returns the removed card
// alongside a confirmation message.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardService.Delete(r.Context(), id, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}

	log.Info("flashcard deleted", slog.String("card_id", id.String()))
	shared.RespondWithMessage(w, r, http.StatusOK, "Flashcard deleted", cardToResponse(card))
}

// Attempt handles POST /api/flashcards/{id}/attempt, recording a correct
// or incorrect answer. isCorrect must be an explicit boolean.
func (h *CardHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserIDFromContext(r); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req AttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "isCorrect must be provided as a boolean")
		return
	}

	if err := h.cardService.RecordAttempt(r.Context(), id, *req.IsCorrect); err != nil {
		HandleAPIError(w, r, err, "Failed to record attempt")
		return
	}

	card, err := h.cardService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load flashcard")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, cardToResponse(card))
}

