package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/srs"
	"github.com/awalczak/memodeck/internal/testutil/mocks"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type studyFixture struct {
	sessions *mocks.MockSessionRepository
	cards    *mocks.MockFlashcardRepository
	decks    *mocks.MockDeckRepository
	svc      StudyService
}

func newStudyFixture() *studyFixture {
	f := &studyFixture{
		sessions: new(mocks.MockSessionRepository),
		cards:    new(mocks.MockFlashcardRepository),
		decks:    new(mocks.MockDeckRepository),
	}
	f.svc = NewStudyService(f.sessions, f.cards, f.decks, fixedNow)
	return f
}

func appErr(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appError, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *AppError, got %T", err)
	return appError
}

func activeSession(id, userID, deckID string) *models.StudySession {
	return &models.StudySession{
		ID:        id,
		UserID:    userID,
		DeckID:    deckID,
		StartedAt: testNow.Add(-5 * time.Minute),
	}
}

func TestStartSnapshotsDueSet(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	deck := &models.Deck{ID: "deck-1", UserID: "user-1", Name: "Physics"}
	due := []models.Flashcard{
		{ID: "card-1", DeckID: "deck-1", Front: "a", Back: "b"},
		{ID: "card-2", DeckID: "deck-1", Front: "c", Back: "d"},
	}
	f.decks.On("Get", ctx, "deck-1", "user-1").Return(deck, nil)
	f.cards.On("DueFlashcards", ctx, "deck-1", "user-1", testNow, 20).Return(due, nil)
	f.sessions.On("Insert", ctx, mock.AnythingOfType("models.StudySession"), []string{"card-1", "card-2"}).Return(nil)

	started, err := f.svc.Start(ctx, "user-1", "deck-1")
	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, "deck-1", started.DeckID)
	assert.Nil(t, started.EndedAt)
	assert.Len(t, started.Flashcards, 2)
	f.sessions.AssertExpectations(t)
}

func TestStartDeckNotFound(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	f.decks.On("Get", ctx, "missing", "user-1").Return(nil, nil)

	_, err := f.svc.Start(ctx, "user-1", "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
}

func TestStartNothingDue(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	deck := &models.Deck{ID: "deck-1", UserID: "user-1"}
	f.decks.On("Get", ctx, "deck-1", "user-1").Return(deck, nil)
	f.cards.On("DueFlashcards", ctx, "deck-1", "user-1", testNow, 20).Return([]models.Flashcard{}, nil)

	_, err := f.svc.Start(ctx, "user-1", "deck-1")
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr(t, err).Code)
	f.sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReviewAppliesScheduler(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	session := activeSession("sess-1", "user-1", "deck-1")
	card := &models.Flashcard{ID: "card-1", DeckID: "deck-1", UserID: "user-1"}

	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)
	f.cards.On("Get", ctx, "card-1", "user-1").Return(card, nil)
	f.sessions.On("SnapshotContains", ctx, "sess-1", "card-1").Return(true, nil)
	f.sessions.On("RecordReview", ctx, mock.MatchedBy(func(rec models.ReviewRecord) bool {
		return rec.SessionID == "sess-1" &&
			rec.FlashcardID == "card-1" &&
			rec.Rating == srs.RatingGood &&
			rec.State.Repetitions == 1 &&
			rec.State.Interval == 1 &&
			rec.State.EaseFactor == 2.5
	})).Return(&models.ReviewOutcome{ReviewID: "rev-1", CardsReviewed: 1}, nil)

	resp, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "rev-1", resp.ReviewID)
	assert.Equal(t, 1, resp.Session.CardsReviewed)
	assert.False(t, resp.Session.Completed)

	// Response carries the updated card state.
	require.NotNil(t, resp.Flashcard.Repetitions)
	assert.Equal(t, 1, *resp.Flashcard.Repetitions)
	require.NotNil(t, resp.Flashcard.NextReviewDate)
	assert.True(t, resp.Flashcard.NextReviewDate.Equal(testNow.AddDate(0, 0, 1)))
	f.sessions.AssertExpectations(t)
}

func TestSubmitReviewReportsAutoCompletion(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	session := activeSession("sess-1", "user-1", "deck-1")
	card := &models.Flashcard{ID: "card-1", DeckID: "deck-1", UserID: "user-1"}
	endedAt := testNow

	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)
	f.cards.On("Get", ctx, "card-1", "user-1").Return(card, nil)
	f.sessions.On("SnapshotContains", ctx, "sess-1", "card-1").Return(true, nil)
	f.sessions.On("RecordReview", ctx, mock.AnythingOfType("models.ReviewRecord")).
		Return(&models.ReviewOutcome{ReviewID: "rev-1", CardsReviewed: 1, Completed: true, EndedAt: &endedAt}, nil)

	resp, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", 4, nil)
	require.NoError(t, err)
	assert.True(t, resp.Session.Completed)
	require.NotNil(t, resp.Session.EndedAt)
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	for _, rating := range []int{0, 5, -1, 42} {
		_, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", rating, nil)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code, "rating %d", rating)
	}
	f.sessions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReviewSessionNotFound(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	f.sessions.On("Get", ctx, "missing", "user-1").Return(nil, nil)

	_, err := f.svc.SubmitReview(ctx, "user-1", "missing", "card-1", 3, nil)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
}

func TestSubmitReviewOnCompletedSession(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	ended := testNow.Add(-time.Minute)
	session := activeSession("sess-1", "user-1", "deck-1")
	session.EndedAt = &ended
	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)

	_, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", 3, nil)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr(t, err).Code)
	f.sessions.AssertNotCalled(t, "RecordReview", mock.Anything, mock.Anything)
}

func TestSubmitReviewCardOutsideDeck(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	session := activeSession("sess-1", "user-1", "deck-1")
	card := &models.Flashcard{ID: "card-1", DeckID: "other-deck", UserID: "user-1"}
	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)
	f.cards.On("Get", ctx, "card-1", "user-1").Return(card, nil)

	// A card from another deck is indistinguishable from a missing one.
	_, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", 3, nil)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
	f.sessions.AssertNotCalled(t, "RecordReview", mock.Anything, mock.Anything)
}

func TestSubmitReviewCardOutsideSnapshot(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	session := activeSession("sess-1", "user-1", "deck-1")
	card := &models.Flashcard{ID: "card-1", DeckID: "deck-1", UserID: "user-1"}
	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)
	f.cards.On("Get", ctx, "card-1", "user-1").Return(card, nil)
	f.sessions.On("SnapshotContains", ctx, "sess-1", "card-1").Return(false, nil)

	_, err := f.svc.SubmitReview(ctx, "user-1", "sess-1", "card-1", 3, nil)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)
	f.sessions.AssertNotCalled(t, "RecordReview", mock.Anything, mock.Anything)
}

func TestCompleteSetsDuration(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	session := activeSession("sess-1", "user-1", "deck-1")
	endedAt := testNow
	completed := *session
	completed.EndedAt = &endedAt
	completed.CardsReviewed = 3

	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)
	f.sessions.On("Complete", ctx, "sess-1", "user-1", testNow).Return(&completed, nil)

	result, err := f.svc.Complete(ctx, "user-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 300, result.DurationSeconds)
	assert.Equal(t, 3, result.CardsReviewed)
}

func TestCompleteTwiceConflicts(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	ended := testNow.Add(-time.Minute)
	session := activeSession("sess-1", "user-1", "deck-1")
	session.EndedAt = &ended
	f.sessions.On("Get", ctx, "sess-1", "user-1").Return(session, nil)

	_, err := f.svc.Complete(ctx, "user-1", "sess-1")
	assert.Equal(t, apperrors.ErrCodeConflict, appErr(t, err).Code)
	f.sessions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteNotFound(t *testing.T) {
	f := newStudyFixture()
	ctx := context.Background()

	f.sessions.On("Get", ctx, "missing", "user-1").Return(nil, nil)

	_, err := f.svc.Complete(ctx, "user-1", "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr(t, err).Code)
}
