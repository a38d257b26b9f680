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

// CardService handles flashcard CRUD business logic
type CardService interface {
	Create(ctx context.Context, userID, deckID, front, back, source string) (*models.Flashcard, error)
	Get(ctx context.Context, userID, id string) (*models.FlashcardDetail, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardListItem, models.Pagination, error)
	Update(ctx context.Context, userID, id, front, back string) (*models.Flashcard, error)
	Delete(ctx context.Context, userID, id string) error
}

type cardService struct {
	cards repository.FlashcardRepository
	decks repository.DeckRepository
	now   func() time.Time
}

// NewCardService creates a new CardService. A nil now defaults to time.Now.
func NewCardService(cards repository.FlashcardRepository, decks repository.DeckRepository, now func() time.Time) CardService {
	if now == nil {
		now = time.Now
	}
	return &cardService{cards: cards, decks: decks, now: now}
}

func validCardSide(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.NewValidationError(field, "cannot be empty")
	}
	if utf8.RuneCountInString(value) > 1000 {
		return "", errors.NewValidationError(field, "must be at most 1000 characters")
	}
	return value, nil
}

func (s *cardService) Create(ctx context.Context, userID, deckID, front, back, source string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard: deck_id=%s, source=%s", deckID, source)

	front, err := validCardSide("front", front)
	if err != nil {
		return nil, err
	}
	back, err = validCardSide("back", back)
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = models.SourceManual
	}
	if source != models.SourceManual && source != models.SourceAI {
		return nil, errors.NewValidationError("source", `must be "manual" or "ai"`)
	}

	deck, err := s.decks.Get(ctx, deckID, userID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	now := s.now().UTC()
	card := models.Flashcard{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		UserID:    userID,
		Front:     front,
		Back:      back,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cards.Insert(ctx, card); err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &card, nil
}

func (s *cardService) Get(ctx context.Context, userID, id string) (*models.FlashcardDetail, error) {
	log := logger.FromContext(ctx)

	card, err := s.cards.GetDetail(ctx, id, userID)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

func (s *cardService) List(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardListItem, models.Pagination, error) {
	log := logger.FromContext(ctx)

	if filter.Source != "" && filter.Source != models.SourceManual && filter.Source != models.SourceAI {
		return nil, models.Pagination{}, errors.NewValidationError("source", `must be "manual" or "ai"`)
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, err := s.cards.List(ctx, filter)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, models.Pagination{}, errors.NewInternalError(err)
	}
	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count flashcards: %v", err)
		return nil, models.Pagination{}, errors.NewInternalError(err)
	}
	return items, paginate(filter.Page, filter.Limit, total), nil
}

func (s *cardService) Update(ctx context.Context, userID, id, front, back string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating flashcard: id=%s", id)

	front, err := validCardSide("front", front)
	if err != nil {
		return nil, err
	}
	back, err = validCardSide("back", back)
	if err != nil {
		return nil, err
	}

	card, err := s.cards.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}

	// Content edits never touch the scheduling state.
	card.Front = front
	card.Back = back
	card.UpdatedAt = s.now().UTC()
	if err := s.cards.Update(ctx, *card); err != nil {
		log.Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *cardService) Delete(ctx context.Context, userID, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting flashcard: id=%s", id)

	affected, err := s.cards.Delete(ctx, id, userID)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	if !affected {
		return errors.NewNotFoundError("flashcard", id)
	}
	return nil
}
