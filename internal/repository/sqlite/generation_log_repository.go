package sqlite

import (
	"context"
	"database/sql"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

type generationLogRepository struct {
	db *sql.DB
}

// NewGenerationLogRepository creates a new GenerationLogRepository implementation
func NewGenerationLogRepository(db *sql.DB) repository.GenerationLogRepository {
	return &generationLogRepository{db: db}
}

func (r *generationLogRepository) Insert(ctx context.Context, l models.GenerationLog) error {
	log := logger.FromContext(ctx).WithPrefix("genlog_repo")
	log.Debug("inserting generation log: id=%s, input_length=%d, generated=%d", l.ID, l.InputLength, l.GeneratedCount)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO ai_generation_logs (id, user_id, input_length, generated_count, created_at)
VALUES (?, ?, ?, ?, ?)
`, l.ID, l.UserID, l.InputLength, l.GeneratedCount, l.CreatedAt)
	if err != nil {
		log.Error("failed to insert generation log: %v", err)
	}
	return err
}
