package models

import (
	"time"

	"github.com/awalczak/memodeck/internal/srs"
)

// Flashcard sources
const (
	SourceManual = "manual"
	SourceAI     = "ai"
)

// Flashcard is a single front/back card with its scheduling state.
// The scheduling fields are nil for a card that has never been reviewed.
type Flashcard struct {
	ID             string     `json:"id"`
	DeckID         string     `json:"deck_id"`
	UserID         string     `json:"-"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Source         string     `json:"source"`
	EasinessFactor *float64   `json:"easiness_factor"`
	Interval       *int       `json:"interval"`
	Repetitions    *int       `json:"repetitions"`
	NextReviewDate *time.Time `json:"next_review_date"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SchedulingState normalizes the nullable persisted fields into the
// scheduler's input, applying the never-reviewed defaults.
func (f *Flashcard) SchedulingState() srs.State {
	s := srs.State{EaseFactor: srs.DefaultEase}
	if f.EasinessFactor != nil {
		s.EaseFactor = *f.EasinessFactor
	}
	if f.Interval != nil {
		s.Interval = *f.Interval
	}
	if f.Repetitions != nil {
		s.Repetitions = *f.Repetitions
	}
	return s
}

// FlashcardListItem is a flashcard row in the paginated listing, joined
// with its deck name.
type FlashcardListItem struct {
	ID             string     `json:"id"`
	DeckID         string     `json:"deck_id"`
	DeckName       string     `json:"deck_name"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Source         string     `json:"source"`
	NextReviewDate *time.Time `json:"next_review_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FlashcardDetail is the full flashcard view including scheduling state.
type FlashcardDetail struct {
	Flashcard
	DeckName string `json:"deck_name"`
}

// FlashcardFilter narrows the flashcard listing.
type FlashcardFilter struct {
	UserID string
	DeckID string
	Source string
	Page   int
	Limit  int
}

// DueFlashcard is a card in the due-set response.
type DueFlashcard struct {
	ID             string     `json:"id"`
	DeckID         string     `json:"deck_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	NextReviewDate *time.Time `json:"next_review_date"`
	EasinessFactor *float64   `json:"easiness_factor"`
	Interval       *int       `json:"interval"`
	Repetitions    *int       `json:"repetitions"`
}
