package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
	"github.com/awalczak/memodeck/internal/srs"
)

// StudyService handles study session business logic: session creation over
// a due-set snapshot, rating submission and completion.
type StudyService interface {
	Start(ctx context.Context, userID, deckID string) (*models.StartedSession, error)
	Get(ctx context.Context, userID, id string) (*models.StudySessionDetail, error)
	SubmitReview(ctx context.Context, userID, sessionID, flashcardID string, rating int, responseTimeMS *int) (*models.ReviewResponse, error)
	Complete(ctx context.Context, userID, id string) (*models.CompletedSession, error)
}

type studyService struct {
	sessions repository.SessionRepository
	cards    repository.FlashcardRepository
	decks    repository.DeckRepository
	now      func() time.Time
}

// NewStudyService creates a new StudyService. A nil now defaults to time.Now.
func NewStudyService(sessions repository.SessionRepository, cards repository.FlashcardRepository, decks repository.DeckRepository, now func() time.Time) StudyService {
	if now == nil {
		now = time.Now
	}
	return &studyService{sessions: sessions, cards: cards, decks: decks, now: now}
}

// Start captures the deck's current due-set as the session's fixed work
// list. Cards becoming due later are not added mid-session.
func (s *studyService) Start(ctx context.Context, userID, deckID string) (*models.StartedSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting study session: deck_id=%s", deckID)

	deck, err := s.decks.Get(ctx, deckID, userID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	now := s.now().UTC()
	due, err := s.cards.DueFlashcards(ctx, deckID, userID, now, defaultDueLimit)
	if err != nil {
		log.Error("failed to get due flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(due) == 0 {
		return nil, errors.NewBadRequestError("no flashcards are due for review in this deck")
	}

	session := models.StudySession{
		ID:        uuid.NewString(),
		UserID:    userID,
		DeckID:    deckID,
		StartedAt: now,
	}
	snapshot := make([]string, 0, len(due))
	cards := make([]models.DueFlashcard, 0, len(due))
	for _, c := range due {
		snapshot = append(snapshot, c.ID)
		cards = append(cards, models.DueFlashcard{
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

	if err := s.sessions.Insert(ctx, session, snapshot); err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("study session started: id=%s, deck_id=%s, cards=%d", session.ID, deckID, len(cards))
	return &models.StartedSession{StudySession: session, Flashcards: cards}, nil
}

func (s *studyService) Get(ctx context.Context, userID, id string) (*models.StudySessionDetail, error) {
	log := logger.FromContext(ctx)

	session, err := s.sessions.GetDetail(ctx, id, userID)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("study session", id)
	}
	return session, nil
}

// SubmitReview applies the scheduler to the card's persisted state and
// records the review. The rated card is the one the client names, so
// duplicate submissions for an already-reviewed card are accepted; they
// update the card again but cannot re-trigger completion.
func (s *studyService) SubmitReview(ctx context.Context, userID, sessionID, flashcardID string, rating int, responseTimeMS *int) (*models.ReviewResponse, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting review: session_id=%s, flashcard_id=%s, rating=%d", sessionID, flashcardID, rating)

	r := srs.Rating(rating)
	if !r.Valid() {
		return nil, errors.NewValidationError("rating", "must be between 1 and 4")
	}
	if responseTimeMS != nil && *responseTimeMS < 0 {
		return nil, errors.NewValidationError("response_time_ms", "cannot be negative")
	}

	session, err := s.sessions.Get(ctx, sessionID, userID)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("study session", sessionID)
	}
	if session.EndedAt != nil {
		return nil, errors.NewConflictError("study session is already completed")
	}

	card, err := s.cards.Get(ctx, flashcardID, userID)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", flashcardID)
	}
	// A card from another deck is reported as not found, same as a card
	// that does not exist: the session's deck defines what is visible.
	if card.DeckID != session.DeckID {
		return nil, errors.NewNotFoundError("flashcard", flashcardID)
	}

	inSnapshot, err := s.sessions.SnapshotContains(ctx, sessionID, flashcardID)
	if err != nil {
		log.Error("failed to check session snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !inSnapshot {
		return nil, errors.NewValidationError("flashcard_id", "is not part of this study session")
	}

	reviewedAt := s.now().UTC()
	result := srs.Apply(card.SchedulingState(), r, reviewedAt)
	log.Debug("scheduler applied: ef=%.2f, interval=%d, repetitions=%d", result.EaseFactor, result.Interval, result.Repetitions)

	outcome, err := s.sessions.RecordReview(ctx, models.ReviewRecord{
		SessionID:      sessionID,
		FlashcardID:    flashcardID,
		UserID:         userID,
		Rating:         r,
		ResponseTimeMS: responseTimeMS,
		State:          result,
		ReviewedAt:     reviewedAt,
	})
	if err != nil {
		log.Error("failed to record review: %v", err)
		return nil, errors.NewInternalError(err)
	}

	card.EasinessFactor = &result.EaseFactor
	card.Interval = &result.Interval
	card.Repetitions = &result.Repetitions
	card.NextReviewDate = &result.NextReview
	card.LastReviewedAt = &reviewedAt
	card.UpdatedAt = reviewedAt

	if outcome.Completed {
		log.Info("study session auto-completed: id=%s, cards_reviewed=%d", sessionID, outcome.CardsReviewed)
	}

	return &models.ReviewResponse{
		ReviewID:  outcome.ReviewID,
		Flashcard: *card,
		Session: models.SessionProgress{
			ID:            sessionID,
			CardsReviewed: outcome.CardsReviewed,
			Completed:     outcome.Completed,
			EndedAt:       outcome.EndedAt,
		},
	}, nil
}

// Complete ends a session the user abandons mid-way. Completing an
// already-completed session is a conflict, not a no-op.
func (s *studyService) Complete(ctx context.Context, userID, id string) (*models.CompletedSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing study session: id=%s", id)

	session, err := s.sessions.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("study session", id)
	}
	if session.EndedAt != nil {
		return nil, errors.NewConflictError("study session is already completed")
	}

	completed, err := s.sessions.Complete(ctx, id, userID, s.now().UTC())
	if err != nil {
		log.Error("failed to complete session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if completed == nil || completed.EndedAt == nil {
		return nil, errors.NewInternalError(fmt.Errorf("session %s vanished during completion", id))
	}

	duration := int(math.Round(completed.EndedAt.Sub(completed.StartedAt).Seconds()))
	log.Info("study session completed: id=%s, cards_reviewed=%d, duration=%ds", id, completed.CardsReviewed, duration)
	return &models.CompletedSession{StudySession: *completed, DurationSeconds: duration}, nil
}
