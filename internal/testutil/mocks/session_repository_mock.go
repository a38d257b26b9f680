package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/awalczak/memodeck/internal/models"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, session models.StudySession, snapshotIDs []string) error {
	args := m.Called(ctx, session, snapshotIDs)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id string, userID string) (*models.StudySession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}

func (m *MockSessionRepository) GetDetail(ctx context.Context, id string, userID string) (*models.StudySessionDetail, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySessionDetail), args.Error(1)
}

func (m *MockSessionRepository) SnapshotContains(ctx context.Context, sessionID, flashcardID string) (bool, error) {
	args := m.Called(ctx, sessionID, flashcardID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) RecordReview(ctx context.Context, rec models.ReviewRecord) (*models.ReviewOutcome, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewOutcome), args.Error(1)
}

func (m *MockSessionRepository) Complete(ctx context.Context, id string, userID string, endedAt time.Time) (*models.StudySession, error) {
	args := m.Called(ctx, id, userID, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudySession), args.Error(1)
}
