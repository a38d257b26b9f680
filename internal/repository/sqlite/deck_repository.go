package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, name=%s", d.ID, d.Name)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, user_id, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
`, d.ID, d.UserID, d.Name, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
	}
	return err
}

func (r *deckRepository) Get(ctx context.Context, id string, userID string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, created_at, updated_at
FROM decks
WHERE id = ? AND user_id = ?
`, id, userID).Scan(&d.ID, &d.UserID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context, userID string, page, limit int) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks: user_id=%s, page=%d, limit=%d", userID, page, limit)

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, created_at, updated_at
FROM decks
WHERE user_id = ?
ORDER BY created_at DESC
LIMIT ? OFFSET ?
`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	log.Debug("found %d decks", len(decks))
	return decks, rows.Err()
}

func (r *deckRepository) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%s, name=%s", d.ID, d.Name)

	_, err := r.db.ExecContext(ctx, `
UPDATE decks
SET name = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`, d.Name, d.UpdatedAt, d.ID, d.UserID)
	if err != nil {
		log.Error("failed to update deck: %v", err)
	}
	return err
}

func (r *deckRepository) Delete(ctx context.Context, id string, userID string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	// Flashcards, sessions and history rows go with the deck via
	// ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *deckRepository) Stats(ctx context.Context, deckID string, now time.Time) (*models.DeckStats, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	var s models.DeckStats
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*),
    COALESCE(SUM(CASE WHEN `+dueFilter+` THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN repetitions IS NULL OR repetitions = 0 THEN 1 ELSE 0 END), 0)
FROM flashcards
WHERE deck_id = ?
`, now, deckID).Scan(&s.FlashcardCount, &s.DueCount, &s.NewCount)
	if err != nil {
		log.Error("failed to compute deck stats: %v", err)
		return nil, err
	}
	log.Debug("deck stats: deck_id=%s, total=%d, due=%d, new=%d", deckID, s.FlashcardCount, s.DueCount, s.NewCount)
	return &s, nil
}
