package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Insert(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting user: id=%s", u.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		log.Error("failed to insert user: %v", err)
	}
	return err
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at
FROM users
WHERE id = ?
`, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at
FROM users
WHERE email = ?
`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) InsertToken(ctx context.Context, t models.AuthToken) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting auth token: user_id=%s", t.UserID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO auth_tokens (token, user_id, created_at, expires_at)
VALUES (?, ?, ?, ?)
`, t.Token, t.UserID, t.CreatedAt, t.ExpiresAt)
	if err != nil {
		log.Error("failed to insert auth token: %v", err)
	}
	return err
}

func (r *userRepository) GetToken(ctx context.Context, token string) (*models.AuthToken, error) {
	var t models.AuthToken
	err := r.db.QueryRowContext(ctx, `
SELECT token, user_id, created_at, expires_at
FROM auth_tokens
WHERE token = ?
`, token).Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *userRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = ?`, token)
	return err
}
