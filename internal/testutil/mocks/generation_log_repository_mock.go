package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/awalczak/memodeck/internal/models"
)

// MockGenerationLogRepository is a mock implementation of repository.GenerationLogRepository
type MockGenerationLogRepository struct {
	mock.Mock
}

func (m *MockGenerationLogRepository) Insert(ctx context.Context, log models.GenerationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
