package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrQuestionRequired is returned when a card's question is empty.
	ErrQuestionRequired = errors.New("question is required")

	// ErrAnswerRequired is returned when a card's answer is empty.
	ErrAnswerRequired = errors.New("answer is required")

	// ErrTopicRequired is returned when a card's topic is empty.
	ErrTopicRequired = errors.New("topic is required")

	// ErrInvalidDifficulty is returned when a card's difficulty is not one
	// of easy, medium, or hard.
	ErrInvalidDifficulty = errors.New("difficulty must be easy, medium, or hard")
)

// Difficulty is the self-assessed difficulty level of a card.
type Difficulty string

// Valid difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is one of the defined difficulty levels.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Card represents a single question/answer study unit with its metadata
// and attempt counters. CreatedBy is nil for anonymous cards, which remain
// editable by any authenticated user for compatibility with records created
// before accounts existed.
type Card struct {
	ID             uuid.UUID  `json:"id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Topic          string     `json:"topic"`
	Category       string     `json:"category,omitempty"`
	Difficulty     Difficulty `json:"difficulty"`
	Tags           []string   `json:"tags"`
	Hint           string     `json:"hint,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	IsPublic       bool       `json:"isPublic"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	ViewCount      int        `json:"viewCount"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewCard creates a new Card with the given fields, trimming text fields,
// normalizing tags, and applying defaults (difficulty medium, public).
// createdBy may be nil for anonymous cards.
// Returns an error if validation fails.
func NewCard(question, answer, topic string, createdBy *uuid.UUID) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:         uuid.New(),
		Question:   strings.TrimSpace(question),
		Answer:     strings.TrimSpace(answer),
		Topic:      strings.TrimSpace(topic),
		Difficulty: DifficultyMedium,
		Tags:       []string{},
		IsPublic:   true,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Question) == "" {
		return ErrQuestionRequired
	}

	if strings.TrimSpace(c.Answer) == "" {
		return ErrAnswerRequired
	}

	if strings.TrimSpace(c.Topic) == "" {
		return ErrTopicRequired
	}

	if !c.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}

	return nil
}

// SetTags replaces the card's tags with the normalized form of tags.
func (c *Card) SetTags(tags []string) {
	c.Tags = NormalizeTags(tags)
}

// Touch updates the UpdatedAt timestamp after a mutation.
func (c *Card) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// SuccessRate returns the percentage of correct attempts, rounded to the
// nearest integer. A card with no recorded attempts has a rate of 0.
func (c *Card) SuccessRate() int {
	total := c.CorrectCount + c.IncorrectCount
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(c.CorrectCount) / float64(total) * 100))
}

// NormalizeTags lowercases and trims tags, drops empties, and removes
// duplicates while preserving first-occurrence order. Tags are always
// stored lowercase and unique within a card.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}
	return normalized
}
