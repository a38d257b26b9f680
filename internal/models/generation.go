package models

import "time"

// GeneratedFlashcard is a front/back draft produced by the AI generator.
// Drafts are not persisted; the client decides which ones to save.
type GeneratedFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GenerationLog records one AI generation call for auditing.
type GenerationLog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	InputLength    int       `json:"input_length"`
	GeneratedCount int       `json:"generated_count"`
	CreatedAt      time.Time `json:"created_at"`
}
