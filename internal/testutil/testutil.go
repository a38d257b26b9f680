package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/awalczak/memodeck/internal/db"
	"github.com/awalczak/memodeck/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied, sharing the production Open path (WAL, foreign keys, busy
// timeout).
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}

// SeedUser inserts a user row and returns its ID.
func SeedUser(t *testing.T, database *db.DB, email string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := database.ExecContext(context.Background(), `
INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
`, id, email, "x")
	require.NoError(t, err)
	return id
}

// SeedDeck inserts a deck row for the given user and returns its ID.
func SeedDeck(t *testing.T, database *db.DB, userID, name string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := database.ExecContext(context.Background(), `
INSERT INTO decks (id, user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
`, id, userID, name, now, now)
	require.NoError(t, err)
	return id
}

// SeedFlashcard inserts a flashcard with the given scheduling state and
// returns its ID. A nil nextReview leaves the card never-scheduled.
func SeedFlashcard(t *testing.T, database *db.DB, deckID, userID, front string, nextReview *time.Time) string {
	t.Helper()

	card := models.Flashcard{
		ID:             uuid.NewString(),
		DeckID:         deckID,
		UserID:         userID,
		Front:          front,
		Back:           front + " (back)",
		Source:         models.SourceManual,
		NextReviewDate: nextReview,
	}
	now := time.Now().UTC()
	_, err := database.ExecContext(context.Background(), `
INSERT INTO flashcards (id, deck_id, user_id, front, back, source, next_review_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, card.ID, card.DeckID, card.UserID, card.Front, card.Back, card.Source, card.NextReviewDate, now, now)
	require.NoError(t, err)
	return card.ID
}
