package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.StudySession, snapshotIDs []string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, deck_id=%s, snapshot=%d cards", s.ID, s.DeckID, len(snapshotIDs))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO review_sessions (id, user_id, deck_id, started_at, ended_at, cards_reviewed)
VALUES (?, ?, ?, ?, NULL, 0)
`, s.ID, s.UserID, s.DeckID, s.StartedAt)
		if err != nil {
			log.Error("failed to insert session: %v", err)
			return err
		}
		for _, cardID := range snapshotIDs {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO session_cards (session_id, flashcard_id, reviewed_at)
VALUES (?, ?, NULL)
`, s.ID, cardID); err != nil {
				log.Error("failed to insert snapshot card: %v", err)
				return err
			}
		}
		return nil
	})
}

func (r *sessionRepository) Get(ctx context.Context, id string, userID string) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var s models.StudySession
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, deck_id, started_at, ended_at, cards_reviewed
FROM review_sessions
WHERE id = ? AND user_id = ?
`, id, userID).Scan(&s.ID, &s.UserID, &s.DeckID, &s.StartedAt, &endedAt, &s.CardsReviewed)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.EndedAt = timePtr(endedAt)
	return &s, nil
}

func (r *sessionRepository) GetDetail(ctx context.Context, id string, userID string) (*models.StudySessionDetail, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var d models.StudySessionDetail
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT s.id, s.user_id, s.deck_id, s.started_at, s.ended_at, s.cards_reviewed, d.name
FROM review_sessions s
JOIN decks d ON d.id = s.deck_id
WHERE s.id = ? AND s.user_id = ?
`, id, userID).Scan(&d.ID, &d.UserID, &d.DeckID, &d.StartedAt, &endedAt, &d.CardsReviewed, &d.DeckName)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session detail: %v", err)
		return nil, err
	}
	d.EndedAt = timePtr(endedAt)
	return &d, nil
}

func (r *sessionRepository) SnapshotContains(ctx context.Context, sessionID, flashcardID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM session_cards WHERE session_id = ? AND flashcard_id = ?
`, sessionID, flashcardID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordReview persists one rating event. The flashcard update, the history
// insert, the snapshot bookkeeping, the counter increment and the possible
// auto-completion commit or roll back together.
func (r *sessionRepository) RecordReview(ctx context.Context, rec models.ReviewRecord) (*models.ReviewOutcome, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("recording review: session_id=%s, flashcard_id=%s, rating=%d", rec.SessionID, rec.FlashcardID, rec.Rating)

	outcome := &models.ReviewOutcome{ReviewID: uuid.NewString()}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE flashcards
SET easiness_factor = ?, interval = ?, repetitions = ?, next_review_date = ?,
    last_reviewed_at = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`, rec.State.EaseFactor, rec.State.Interval, rec.State.Repetitions, rec.State.NextReview,
			rec.ReviewedAt, rec.ReviewedAt, rec.FlashcardID, rec.UserID); err != nil {
			log.Error("failed to update flashcard state: %v", err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO review_history (id, user_id, session_id, flashcard_id, rating, response_time_ms, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, outcome.ReviewID, rec.UserID, rec.SessionID, rec.FlashcardID, int(rec.Rating),
			nullInt(rec.ResponseTimeMS), rec.ReviewedAt); err != nil {
			log.Error("failed to insert review history: %v", err)
			return err
		}

		// First review of this snapshot card marks it done; re-ratings
		// leave the snapshot bookkeeping untouched.
		if _, err := tx.ExecContext(ctx, `
UPDATE session_cards
SET reviewed_at = ?
WHERE session_id = ? AND flashcard_id = ? AND reviewed_at IS NULL
`, rec.ReviewedAt, rec.SessionID, rec.FlashcardID); err != nil {
			log.Error("failed to mark snapshot card reviewed: %v", err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE review_sessions
SET cards_reviewed = cards_reviewed + 1
WHERE id = ?
`, rec.SessionID); err != nil {
			log.Error("failed to increment session counter: %v", err)
			return err
		}

		var remaining int
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM session_cards WHERE session_id = ? AND reviewed_at IS NULL
`, rec.SessionID).Scan(&remaining); err != nil {
			log.Error("failed to count remaining snapshot cards: %v", err)
			return err
		}

		if remaining == 0 {
			if _, err := tx.ExecContext(ctx, `
UPDATE review_sessions
SET ended_at = ?
WHERE id = ? AND ended_at IS NULL
`, rec.ReviewedAt, rec.SessionID); err != nil {
				log.Error("failed to auto-complete session: %v", err)
				return err
			}
			outcome.Completed = true
			endedAt := rec.ReviewedAt
			outcome.EndedAt = &endedAt
		}

		return tx.QueryRowContext(ctx, `
SELECT cards_reviewed FROM review_sessions WHERE id = ?
`, rec.SessionID).Scan(&outcome.CardsReviewed)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("review recorded: review_id=%s, cards_reviewed=%d, completed=%v",
		outcome.ReviewID, outcome.CardsReviewed, outcome.Completed)
	return outcome, nil
}

func (r *sessionRepository) Complete(ctx context.Context, id string, userID string, endedAt time.Time) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("completing session: id=%s", id)

	if _, err := r.db.ExecContext(ctx, `
UPDATE review_sessions
SET ended_at = ?
WHERE id = ? AND user_id = ? AND ended_at IS NULL
`, endedAt, id, userID); err != nil {
		log.Error("failed to complete session: %v", err)
		return nil, err
	}
	return r.Get(ctx, id, userID)
}
