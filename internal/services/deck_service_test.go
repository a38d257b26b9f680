package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/testutil/mocks"
)

type deckFixture struct {
	decks *mocks.MockDeckRepository
	cards *mocks.MockFlashcardRepository
	svc   DeckService
}

func newDeckFixture() *deckFixture {
	f := &deckFixture{
		decks: new(mocks.MockDeckRepository),
		cards: new(mocks.MockFlashcardRepository),
	}
	f.svc = NewDeckService(f.decks, f.cards, fixedNow)
	return f
}

func TestCreateDeckTrimsName(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Insert", ctx, mock.MatchedBy(func(d models.Deck) bool {
		return d.Name == "Biology" && d.UserID == "user-1"
	})).Return(nil)

	deck, err := f.svc.Create(ctx, "user-1", "  Biology  ")
	require.NoError(t, err)
	assert.Equal(t, "Biology", deck.Name)
	assert.NotEmpty(t, deck.ID)
}

func TestCreateDeckRejectsBadNames(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "user-1", "   ")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)

	_, err = f.svc.Create(ctx, "user-1", strings.Repeat("x", 101))
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)

	f.decks.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateDeckNameLimitIsCharacters(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	// 100 two-byte runes is 200 bytes but exactly at the character limit.
	name := strings.Repeat("ż", 100)
	f.decks.On("Insert", ctx, mock.MatchedBy(func(d models.Deck) bool {
		return d.Name == name
	})).Return(nil)

	_, err := f.svc.Create(ctx, "user-1", name)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "user-1", strings.Repeat("ż", 101))
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)
}

func TestGetDeckMergesStats(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	deck := &models.Deck{ID: "deck-1", UserID: "user-1", Name: "Biology"}
	f.decks.On("Get", ctx, "deck-1", "user-1").Return(deck, nil)
	f.decks.On("Stats", ctx, "deck-1", testNow).Return(&models.DeckStats{FlashcardCount: 12, DueCount: 4, NewCount: 2}, nil)

	detail, err := f.svc.Get(ctx, "user-1", "deck-1")
	require.NoError(t, err)
	assert.Equal(t, 12, detail.FlashcardCount)
	assert.Equal(t, 4, detail.DueCount)
	assert.Equal(t, 2, detail.NewCount)
}

func TestGetDeckNotFound(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Get", ctx, "missing", "user-1").Return(nil, nil)

	_, err := f.svc.Get(ctx, "user-1", "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
}

func TestListDecksPagination(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	decks := []models.Deck{{ID: "d1", Name: "One"}, {ID: "d2", Name: "Two"}}
	f.decks.On("List", ctx, "user-1", 1, 20).Return(decks, nil)
	f.decks.On("Count", ctx, "user-1").Return(45, nil)
	f.decks.On("Stats", ctx, mock.Anything, testNow).Return(&models.DeckStats{}, nil)

	items, pg, err := f.svc.List(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 20, pg.Limit)
	assert.Equal(t, 45, pg.Total)
	assert.Equal(t, 3, pg.TotalPages)
}

func TestDeleteDeckNotFound(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Delete", ctx, "missing", "user-1").Return(false, nil)

	err := f.svc.Delete(ctx, "user-1", "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
}

func TestDueCardsClampsLimit(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	deck := &models.Deck{ID: "deck-1", UserID: "user-1"}
	f.decks.On("Get", ctx, "deck-1", "user-1").Return(deck, nil)
	f.cards.On("DueFlashcards", ctx, "deck-1", "user-1", testNow, 100).Return([]models.Flashcard{{ID: "c1"}}, nil)
	f.cards.On("CountDue", ctx, "deck-1", "user-1", testNow).Return(250, nil)

	cards, total, err := f.svc.DueCards(ctx, "user-1", "deck-1", 9999)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Equal(t, 250, total)
	f.cards.AssertExpectations(t)
}

func TestDueCardsDefaultLimit(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	deck := &models.Deck{ID: "deck-1", UserID: "user-1"}
	f.decks.On("Get", ctx, "deck-1", "user-1").Return(deck, nil)
	f.cards.On("DueFlashcards", ctx, "deck-1", "user-1", testNow, 20).Return([]models.Flashcard{}, nil)
	f.cards.On("CountDue", ctx, "deck-1", "user-1", testNow).Return(0, nil)

	cards, total, err := f.svc.DueCards(ctx, "user-1", "deck-1", 0)
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Equal(t, 0, total)
}
