package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// CreateCardRequest defines the payload for flashcard creation.
type CreateCardRequest struct {
	Question    string   `json:"question"    validate:"required"`
	Answer      string   `json:"answer"      validate:"required"`
	Topic       string   `json:"topic"       validate:"required"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"  validate:"omitempty,oneof=easy medium hard"`
	Tags        []string `json:"tags"`
	Hint        string   `json:"hint"`
	Explanation string   `json:"explanation"`
	ImageURL    string   `json:"imageUrl"`
	IsPublic    *bool    `json:"isPublic"`
}

// UpdateCardRequest defines the payload for partial flashcard updates.
// Absent fields are left unchanged.
type UpdateCardRequest struct {
	Question    *string  `json:"question"`
	Answer      *string  `json:"answer"`
	Topic       *string  `json:"topic"`
	Category    *string  `json:"category"`
	Difficulty  *string  `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags        []string `json:"tags"`
	Hint        *string  `json:"hint"`
	Explanation *string  `json:"explanation"`
	ImageURL    *string  `json:"imageUrl"`
	IsPublic    *bool    `json:"isPublic"`
}

// AttemptRequest defines the payload for recording an answer attempt.
// IsCorrect must be an explicit JSON boolean; a missing field is rejected.
type AttemptRequest struct {
	IsCorrect *bool `json:"isCorrect" validate:"required"`
}

// BookmarkRequest defines the payload for toggling a bookmark.
type BookmarkRequest struct {
	CardID string `json:"cardId" validate:"required,uuid"`
}

// ProgressRequest defines the payload for marking a card known or unknown.
type ProgressRequest struct {
	CardID  string `json:"cardId"  validate:"required,uuid"`
	IsKnown *bool  `json:"isKnown" validate:"required"`
}

// CardResponse represents the response data for a flashcard, including the
// derived success rate.
type CardResponse struct {
	ID             uuid.UUID  `json:"id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Topic          string     `json:"topic"`
	Category       string     `json:"category,omitempty"`
	Difficulty     string     `json:"difficulty"`
	Tags           []string   `json:"tags"`
	Hint           string     `json:"hint,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	IsPublic       bool       `json:"isPublic"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	ViewCount      int        `json:"viewCount"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
	SuccessRate    int        `json:"successRate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ProfileResponse represents the response data for the profile endpoint.
type ProfileResponse struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Bookmarks []uuid.UUID `json:"bookmarks"`
	Known     []uuid.UUID `json:"known"`
	Unknown   []uuid.UUID `json:"unknown"`
}

// cardToResponse converts a domain.Card to a CardResponse.
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:             card.ID,
		Question:       card.Question,
		Answer:         card.Answer,
		Topic:          card.Topic,
		Category:       card.Category,
		Difficulty:     string(card.Difficulty),
		Tags:           card.Tags,
		Hint:           card.Hint,
		Explanation:    card.Explanation,
		ImageURL:       card.ImageURL,
		IsPublic:       card.IsPublic,
		CreatedBy:      card.CreatedBy,
		ViewCount:      card.ViewCount,
		CorrectCount:   card.CorrectCount,
		IncorrectCount: card.IncorrectCount,
		SuccessRate:    card.SuccessRate(),
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
}

// cardsToResponse converts a slice of cards, keeping JSON output [] for
// empty pages.
func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardToResponse(card))
	}
	return out
}
