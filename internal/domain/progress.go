package domain

import "github.com/google/uuid"

// Progress is a per-user partition of cards by self-reported mastery.
// A card ID never appears in both Known and Unknown; marking a card moves
// it between the two sets.
type Progress struct {
	Known   []uuid.UUID `json:"known"`
	Unknown []uuid.UUID `json:"unknown"`
}

// NewProgress returns an empty Progress with non-nil slices so the JSON
// encoding is always [] rather than null.
func NewProgress() *Progress {
	return &Progress{
		Known:   []uuid.UUID{},
		Unknown: []uuid.UUID{},
	}
}
