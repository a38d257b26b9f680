package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/awalczak/memodeck/internal/ai"
	"github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/ratelimit"
	"github.com/awalczak/memodeck/internal/repository"
)

const (
	minGenerationInput = 100
	maxGenerationInput = 5000
)

// GenerationResult is returned from flashcard generation.
type GenerationResult struct {
	GenerationLogID string                      `json:"generation_log_id"`
	Flashcards      []models.GeneratedFlashcard `json:"flashcards"`
	Count           int                         `json:"count"`
	EstimatedCount  int                         `json:"estimated_count"`
}

// GenerationService handles AI flashcard generation
type GenerationService interface {
	Generate(ctx context.Context, userID, text, language string) (*GenerationResult, error)
	RateLimit(userID string) ratelimit.Decision
}

type generationService struct {
	generator ai.Generator
	logs      repository.GenerationLogRepository
	limiter   *ratelimit.Limiter
	now       func() time.Time
}

// NewGenerationService creates a new GenerationService. A nil now defaults
// to time.Now.
func NewGenerationService(generator ai.Generator, logs repository.GenerationLogRepository, limiter *ratelimit.Limiter, now func() time.Time) GenerationService {
	if now == nil {
		now = time.Now
	}
	return &generationService{generator: generator, logs: logs, limiter: limiter, now: now}
}

// RateLimit checks and records one generation attempt for the user. The
// HTTP layer calls this before Generate so the headers are right even on
// validation failures.
func (s *generationService) RateLimit(userID string) ratelimit.Decision {
	return s.limiter.Allow(userID)
}

func (s *generationService) Generate(ctx context.Context, userID, text, language string) (*GenerationResult, error) {
	log := logger.FromContext(ctx)

	text = strings.TrimSpace(text)
	// Character counts, not bytes: multibyte study text must not hit the
	// ceiling early.
	inputLen := utf8.RuneCountInString(text)
	if inputLen < minGenerationInput {
		return nil, errors.NewValidationError("text", fmt.Sprintf("must be at least %d characters", minGenerationInput))
	}
	if inputLen > maxGenerationInput {
		return nil, errors.NewValidationError("text", fmt.Sprintf("must be at most %d characters", maxGenerationInput))
	}
	if language == "" {
		language = "en"
	}
	if len(language) != 2 {
		return nil, errors.NewValidationError("language", "must be a two-letter ISO 639-1 code")
	}

	estimated := ai.EstimateCount(inputLen)
	log.Info("generating flashcards: user_id=%s, input_length=%d, estimated=%d", userID, inputLen, estimated)

	cards, err := s.generator.Generate(ctx, text, language, estimated)
	if err != nil {
		log.Error("generation failed: %v", err)
		return nil, errors.NewAIServiceError("flashcard generation failed", 502, err)
	}

	entry := models.GenerationLog{
		ID:             uuid.NewString(),
		UserID:         userID,
		InputLength:    inputLen,
		GeneratedCount: len(cards),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		// The cards were generated; losing the audit row is not worth
		// failing the request.
		log.Warn("failed to insert generation log: %v", err)
	}

	return &GenerationResult{
		GenerationLogID: entry.ID,
		Flashcards:      cards,
		Count:           len(cards),
		EstimatedCount:  estimated,
	}, nil
}
