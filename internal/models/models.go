package models

import "time"

// User is an account that owns decks, flashcards and study sessions.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthToken is an opaque bearer token issued at sign-in.
type AuthToken struct {
	Token     string    `json:"-"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// AuthResponse is returned from signup and signin.
type AuthResponse struct {
	User        User      `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Deck is a named collection of flashcards.
type Deck struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeckStats are the per-deck counters shown in listings and detail views.
type DeckStats struct {
	FlashcardCount int `json:"flashcard_count"`
	DueCount       int `json:"due_count"`
	NewCount       int `json:"new_count"`
}

// DeckListItem is a deck row in the paginated listing.
type DeckListItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FlashcardCount int       `json:"flashcard_count"`
	DueCount       int       `json:"due_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DeckDetail is the full deck view including the new-card counter.
type DeckDetail struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FlashcardCount int       `json:"flashcard_count"`
	DueCount       int       `json:"due_count"`
	NewCount       int       `json:"new_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
