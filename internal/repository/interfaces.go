package repository

import (
	"context"
	"time"

	"github.com/awalczak/memodeck/internal/models"
)

// Repositories return (nil, nil) when a record does not exist or is not
// owned by the given user; services translate that into NOT_FOUND.

// UserRepository handles account and token data access
type UserRepository interface {
	Insert(ctx context.Context, user models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	InsertToken(ctx context.Context, token models.AuthToken) error
	GetToken(ctx context.Context, token string) (*models.AuthToken, error)
	DeleteToken(ctx context.Context, token string) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Insert(ctx context.Context, deck models.Deck) error
	Get(ctx context.Context, id string, userID string) (*models.Deck, error)
	List(ctx context.Context, userID string, page, limit int) ([]models.Deck, error)
	Count(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id string, userID string) (bool, error)
	Stats(ctx context.Context, deckID string, now time.Time) (*models.DeckStats, error)
}

// FlashcardRepository handles flashcard data access, including the
// due-set selection query.
type FlashcardRepository interface {
	Insert(ctx context.Context, card models.Flashcard) error
	Get(ctx context.Context, id string, userID string) (*models.Flashcard, error)
	GetDetail(ctx context.Context, id string, userID string) (*models.FlashcardDetail, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardListItem, error)
	Count(ctx context.Context, filter models.FlashcardFilter) (int, error)
	Update(ctx context.Context, card models.Flashcard) error
	Delete(ctx context.Context, id string, userID string) (bool, error)
	DueFlashcards(ctx context.Context, deckID, userID string, now time.Time, limit int) ([]models.Flashcard, error)
	CountDue(ctx context.Context, deckID, userID string, now time.Time) (int, error)
}

// SessionRepository handles study session data access. Insert persists the
// session together with its due-set snapshot; RecordReview persists one
// rating event atomically (card state, history row, snapshot bookkeeping,
// session counter, auto-completion).
type SessionRepository interface {
	Insert(ctx context.Context, session models.StudySession, snapshotIDs []string) error
	Get(ctx context.Context, id string, userID string) (*models.StudySession, error)
	GetDetail(ctx context.Context, id string, userID string) (*models.StudySessionDetail, error)
	SnapshotContains(ctx context.Context, sessionID, flashcardID string) (bool, error)
	RecordReview(ctx context.Context, rec models.ReviewRecord) (*models.ReviewOutcome, error)
	Complete(ctx context.Context, id string, userID string, endedAt time.Time) (*models.StudySession, error)
}

// GenerationLogRepository records AI generation calls, insert-only.
type GenerationLogRepository interface {
	Insert(ctx context.Context, log models.GenerationLog) error
}
