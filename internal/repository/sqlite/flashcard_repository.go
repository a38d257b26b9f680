package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: id=%s, deck_id=%s", c.ID, c.DeckID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (id, deck_id, user_id, front, back, source,
    easiness_factor, interval, repetitions, next_review_date, last_reviewed_at,
    created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, c.DeckID, c.UserID, c.Front, c.Back, c.Source,
		nullFloat(c.EasinessFactor), nullInt(c.Interval), nullInt(c.Repetitions),
		nullTime(c.NextReviewDate), nullTime(c.LastReviewedAt), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
	}
	return err
}

func scanFlashcard(row interface{ Scan(...any) error }) (*models.Flashcard, error) {
	var c models.Flashcard
	var ef sql.NullFloat64
	var interval, repetitions sql.NullInt64
	var nextReview, lastReviewed sql.NullTime
	err := row.Scan(&c.ID, &c.DeckID, &c.UserID, &c.Front, &c.Back, &c.Source,
		&ef, &interval, &repetitions, &nextReview, &lastReviewed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.EasinessFactor = floatPtr(ef)
	c.Interval = intPtr(interval)
	c.Repetitions = intPtr(repetitions)
	c.NextReviewDate = timePtr(nextReview)
	c.LastReviewedAt = timePtr(lastReviewed)
	return &c, nil
}

const flashcardColumns = `id, deck_id, user_id, front, back, source,
easiness_factor, interval, repetitions, next_review_date, last_reviewed_at,
created_at, updated_at`

func (r *flashcardRepository) Get(ctx context.Context, id string, userID string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+flashcardColumns+`
FROM flashcards
WHERE id = ? AND user_id = ?
`, id, userID)
	c, err := scanFlashcard(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return c, nil
}

func (r *flashcardRepository) GetDetail(ctx context.Context, id string, userID string) (*models.FlashcardDetail, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	var d models.FlashcardDetail
	var ef sql.NullFloat64
	var interval, repetitions sql.NullInt64
	var nextReview, lastReviewed sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT f.id, f.deck_id, f.user_id, f.front, f.back, f.source,
       f.easiness_factor, f.interval, f.repetitions, f.next_review_date, f.last_reviewed_at,
       f.created_at, f.updated_at, d.name
FROM flashcards f
JOIN decks d ON d.id = f.deck_id
WHERE f.id = ? AND f.user_id = ?
`, id, userID).Scan(&d.ID, &d.DeckID, &d.UserID, &d.Front, &d.Back, &d.Source,
		&ef, &interval, &repetitions, &nextReview, &lastReviewed, &d.CreatedAt, &d.UpdatedAt, &d.DeckName)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard detail: %v", err)
		return nil, err
	}
	d.EasinessFactor = floatPtr(ef)
	d.Interval = intPtr(interval)
	d.Repetitions = intPtr(repetitions)
	d.NextReviewDate = timePtr(nextReview)
	d.LastReviewedAt = timePtr(lastReviewed)
	return &d, nil
}

func listQuery(filter models.FlashcardFilter) squirrel.SelectBuilder {
	q := sqlBuilder.Select().From("flashcards f").
		Where(squirrel.Eq{"f.user_id": filter.UserID})
	if filter.DeckID != "" {
		q = q.Where(squirrel.Eq{"f.deck_id": filter.DeckID})
	}
	if filter.Source != "" {
		q = q.Where(squirrel.Eq{"f.source": filter.Source})
	}
	return q
}

func (r *flashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardListItem, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: user_id=%s, deck_id=%s, source=%s", filter.UserID, filter.DeckID, filter.Source)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	q := listQuery(filter).
		Columns("f.id", "f.deck_id", "d.name", "f.front", "f.back", "f.source",
			"f.next_review_date", "f.created_at", "f.updated_at").
		Join("decks d ON d.id = f.deck_id").
		OrderBy("f.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.FlashcardListItem
	for rows.Next() {
		var it models.FlashcardListItem
		var nextReview sql.NullTime
		if err := rows.Scan(&it.ID, &it.DeckID, &it.DeckName, &it.Front, &it.Back, &it.Source,
			&nextReview, &it.CreatedAt, &it.UpdatedAt); err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		it.NextReviewDate = timePtr(nextReview)
		items = append(items, it)
	}
	log.Debug("found %d flashcards", len(items))
	return items, rows.Err()
}

func (r *flashcardRepository) Count(ctx context.Context, filter models.FlashcardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	query, args, err := listQuery(filter).Columns("COUNT(*)").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count flashcards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s", c.ID)

	_, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET front = ?, back = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`, c.Front, c.Back, c.UpdatedAt, c.ID, c.UserID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
	}
	return err
}

func (r *flashcardRepository) Delete(ctx context.Context, id string, userID string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *flashcardRepository) DueFlashcards(ctx context.Context, deckID, userID string, now time.Time, limit int) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("fetching due flashcards: deck_id=%s, limit=%d", deckID, limit)

	// Never-reviewed cards sort ahead of the overdue backlog so new
	// content is not starved by accumulated reviews.
	rows, err := r.db.QueryContext(ctx, `
SELECT `+flashcardColumns+`
FROM flashcards
WHERE deck_id = ? AND user_id = ? AND `+dueFilter+`
ORDER BY next_review_date ASC NULLS FIRST
LIMIT ?
`, deckID, userID, now, limit)
	if err != nil {
		log.Error("failed to query due flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, *c)
	}
	log.Debug("found %d due flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardRepository) CountDue(ctx context.Context, deckID, userID string, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM flashcards
WHERE deck_id = ? AND user_id = ? AND `+dueFilter+`
`, deckID, userID, now).Scan(&count)
	if err != nil {
		log.Error("failed to count due flashcards: %v", err)
		return 0, err
	}
	return count, nil
}
