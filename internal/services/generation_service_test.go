package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/ratelimit"
	"github.com/awalczak/memodeck/internal/testutil/mocks"
)

type stubGenerator struct {
	cards []models.GeneratedFlashcard
	err   error

	gotText     string
	gotLanguage string
	gotCount    int
}

func (g *stubGenerator) Generate(_ context.Context, text, language string, count int) ([]models.GeneratedFlashcard, error) {
	g.gotText, g.gotLanguage, g.gotCount = text, language, count
	return g.cards, g.err
}

func newGenerationFixture(gen *stubGenerator) (*mocks.MockGenerationLogRepository, GenerationService) {
	logs := new(mocks.MockGenerationLogRepository)
	limiter := ratelimit.New(10, time.Minute, fixedNow)
	return logs, NewGenerationService(gen, logs, limiter, fixedNow)
}

func studyText() string {
	return strings.Repeat("the mitochondria is the powerhouse of the cell. ", 20)
}

func TestGenerateReturnsCardsAndLogs(t *testing.T) {
	gen := &stubGenerator{cards: []models.GeneratedFlashcard{
		{Front: "Q1", Back: "A1"},
		{Front: "Q2", Back: "A2"},
	}}
	logs, svc := newGenerationFixture(gen)
	ctx := context.Background()

	text := studyText()
	logs.On("Insert", ctx, mock.MatchedBy(func(l models.GenerationLog) bool {
		return l.UserID == "user-1" && l.InputLength == len(text) && l.GeneratedCount == 2
	})).Return(nil)

	result, err := svc.Generate(ctx, "user-1", text, "en")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.NotEmpty(t, result.GenerationLogID)
	assert.Equal(t, "en", gen.gotLanguage)
	assert.GreaterOrEqual(t, gen.gotCount, 2)
	assert.LessOrEqual(t, gen.gotCount, 5)
	logs.AssertExpectations(t)
}

func TestGenerateInputBounds(t *testing.T) {
	gen := &stubGenerator{}
	_, svc := newGenerationFixture(gen)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user-1", "too short", "en")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)

	_, err = svc.Generate(ctx, "user-1", strings.Repeat("x", 5001), "en")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)

	_, err = svc.Generate(ctx, "user-1", studyText(), "english")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)
}

func TestGenerateCountsCharactersNotBytes(t *testing.T) {
	gen := &stubGenerator{cards: []models.GeneratedFlashcard{{Front: "Q", Back: "A"}}}
	logs, svc := newGenerationFixture(gen)
	ctx := context.Background()

	// Under 5,000 characters but well over 5,000 bytes of UTF-8.
	text := strings.TrimSpace(strings.Repeat("zażółć gęślą jaźń ", 270))
	require.Greater(t, len(text), 5000)
	chars := utf8.RuneCountInString(text)
	require.LessOrEqual(t, chars, 5000)

	logs.On("Insert", ctx, mock.MatchedBy(func(l models.GenerationLog) bool {
		return l.InputLength == chars
	})).Return(nil)

	_, err := svc.Generate(ctx, "user-1", text, "pl")
	require.NoError(t, err)
	logs.AssertExpectations(t)

	// 99 two-byte runes is 198 bytes but still below the 100-character
	// minimum.
	_, err = svc.Generate(ctx, "user-1", strings.Repeat("ż", 99), "pl")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)
}

func TestGenerateDefaultsLanguage(t *testing.T) {
	gen := &stubGenerator{cards: []models.GeneratedFlashcard{{Front: "Q", Back: "A"}}}
	logs, svc := newGenerationFixture(gen)
	logs.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Generate(context.Background(), "user-1", studyText(), "")
	require.NoError(t, err)
	assert.Equal(t, "en", gen.gotLanguage)
}

func TestGenerateMapsProviderFailure(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("model unavailable")}
	logs, svc := newGenerationFixture(gen)

	_, err := svc.Generate(context.Background(), "user-1", studyText(), "en")
	e := appErr(t, err)
	assert.Equal(t, apperrors.ErrCodeAIService, e.Code)
	assert.Equal(t, 502, e.Status)
	logs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestGenerateSurvivesLogFailure(t *testing.T) {
	gen := &stubGenerator{cards: []models.GeneratedFlashcard{{Front: "Q", Back: "A"}}}
	logs, svc := newGenerationFixture(gen)
	logs.On("Insert", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full"))

	result, err := svc.Generate(context.Background(), "user-1", studyText(), "en")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

func TestRateLimitDecisions(t *testing.T) {
	gen := &stubGenerator{}
	_, svc := newGenerationFixture(gen)

	for i := 0; i < 10; i++ {
		assert.True(t, svc.RateLimit("user-1").Allowed)
	}
	d := svc.RateLimit("user-1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	assert.True(t, svc.RateLimit("user-2").Allowed)
}
