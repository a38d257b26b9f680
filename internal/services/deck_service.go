package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

const (
	// Due-set page sizing
	defaultDueLimit = 20
	maxDueLimit     = 100

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// DeckService handles deck-related business logic
type DeckService interface {
	Create(ctx context.Context, userID, name string) (*models.Deck, error)
	Get(ctx context.Context, userID, id string) (*models.DeckDetail, error)
	List(ctx context.Context, userID string, page, limit int) ([]models.DeckListItem, models.Pagination, error)
	Update(ctx context.Context, userID, id, name string) (*models.Deck, error)
	Delete(ctx context.Context, userID, id string) error
	DueCards(ctx context.Context, userID, deckID string, limit int) ([]models.DueFlashcard, int, error)
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.FlashcardRepository
	now   func() time.Time
}

// NewDeckService creates a new DeckService. A nil now defaults to time.Now.
func NewDeckService(decks repository.DeckRepository, cards repository.FlashcardRepository, now func() time.Time) DeckService {
	if now == nil {
		now = time.Now
	}
	return &deckService{decks: decks, cards: cards, now: now}
}

func validDeckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewValidationError("name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", errors.NewValidationError("name", "must be at most 100 characters")
	}
	return name, nil
}

func (s *deckService) Create(ctx context.Context, userID, name string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: user_id=%s", userID)

	name, err := validDeckName(name)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	deck := models.Deck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.decks.Insert(ctx, deck); err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &deck, nil
}

func (s *deckService) Get(ctx context.Context, userID, id string) (*models.DeckDetail, error) {
	log := logger.FromContext(ctx)

	deck, err := s.decks.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}

	stats, err := s.decks.Stats(ctx, deck.ID, s.now().UTC())
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.DeckDetail{
		ID:             deck.ID,
		Name:           deck.Name,
		FlashcardCount: stats.FlashcardCount,
		DueCount:       stats.DueCount,
		NewCount:       stats.NewCount,
		CreatedAt:      deck.CreatedAt,
		UpdatedAt:      deck.UpdatedAt,
	}, nil
}

func (s *deckService) List(ctx context.Context, userID string, page, limit int) ([]models.DeckListItem, models.Pagination, error) {
	log := logger.FromContext(ctx)

	page, limit = normalizePage(page, limit)

	decks, err := s.decks.List(ctx, userID, page, limit)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, models.Pagination{}, errors.NewInternalError(err)
	}
	total, err := s.decks.Count(ctx, userID)
	if err != nil {
		log.Error("failed to count decks: %v", err)
		return nil, models.Pagination{}, errors.NewInternalError(err)
	}

	now := s.now().UTC()
	items := make([]models.DeckListItem, 0, len(decks))
	for _, d := range decks {
		stats, err := s.decks.Stats(ctx, d.ID, now)
		if err != nil {
			log.Error("failed to get deck stats: deck_id=%s, %v", d.ID, err)
			return nil, models.Pagination{}, errors.NewInternalError(err)
		}
		items = append(items, models.DeckListItem{
			ID:             d.ID,
			Name:           d.Name,
			FlashcardCount: stats.FlashcardCount,
			DueCount:       stats.DueCount,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		})
	}

	return items, paginate(page, limit, total), nil
}

func (s *deckService) Update(ctx context.Context, userID, id, name string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating deck: id=%s", id)

	name, err := validDeckName(name)
	if err != nil {
		return nil, err
	}

	deck, err := s.decks.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}

	deck.Name = name
	deck.UpdatedAt = s.now().UTC()
	if err := s.decks.Update(ctx, *deck); err != nil {
		log.Error("failed to update deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) Delete(ctx context.Context, userID, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: id=%s", id)

	affected, err := s.decks.Delete(ctx, id, userID)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	if !affected {
		return errors.NewNotFoundError("deck", id)
	}
	return nil
}

// DueCards returns the current due page for a deck plus the total eligible
// count, which may exceed the page.
func (s *deckService) DueCards(ctx context.Context, userID, deckID string, limit int) ([]models.DueFlashcard, int, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		limit = defaultDueLimit
	}
	if limit > maxDueLimit {
		limit = maxDueLimit
	}

	deck, err := s.decks.Get(ctx, deckID, userID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, 0, errors.NewNotFoundError("deck", deckID)
	}

	now := s.now().UTC()
	cards, err := s.cards.DueFlashcards(ctx, deckID, userID, now, limit)
	if err != nil {
		log.Error("failed to get due flashcards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.cards.CountDue(ctx, deckID, userID, now)
	if err != nil {
		log.Error("failed to count due flashcards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	due := make([]models.DueFlashcard, 0, len(cards))
	for _, c := range cards {
		due = append(due, models.DueFlashcard{
			ID:             c.ID,
			DeckID:         c.DeckID,
			Front:          c.Front,
			Back:           c.Back,
			NextReviewDate: c.NextReviewDate,
			EasinessFactor: c.EasinessFactor,
			Interval:       c.Interval,
			Repetitions:    c.Repetitions,
		})
	}
	return due, total, nil
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func paginate(page, limit, total int) models.Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return models.Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
