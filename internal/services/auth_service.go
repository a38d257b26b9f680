package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/logger"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/repository"
)

// AuthService handles accounts and bearer tokens
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Signin(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Signout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates a new AuthService. A nil now defaults to time.Now.
func NewAuthService(users repository.UserRepository, tokenTTL time.Duration, now func() time.Time) AuthService {
	if now == nil {
		now = time.Now
	}
	return &authService{users: users, tokenTTL: tokenTTL, now: now}
}

func (s *authService) Signup(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	log := logger.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug("signing up: email=%s", email)

	if len(password) < 8 {
		return nil, errors.NewValidationError("password", "must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up email: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		log.Error("failed to insert user: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("user signed up: id=%s", user.ID)
	return s.issueToken(ctx, user)
}

func (s *authService) Signin(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	log := logger.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug("signing in: email=%s", email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up email: %v", err)
		return nil, errors.NewInternalError(err)
	}
	// Same response for unknown email and wrong password.
	if user == nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	log.Info("user signed in: id=%s", user.ID)
	return s.issueToken(ctx, *user)
}

func (s *authService) Signout(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if err := s.users.DeleteToken(ctx, token); err != nil {
		log.Error("failed to delete token: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user. Expired tokens are
// deleted on sight.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return nil, errors.NewUnauthorizedError("missing bearer token")
	}

	stored, err := s.users.GetToken(ctx, token)
	if err != nil {
		log.Error("failed to look up token: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stored == nil {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}
	if stored.ExpiresAt.Before(s.now().UTC()) {
		if err := s.users.DeleteToken(ctx, token); err != nil {
			log.Warn("failed to delete expired token: %v", err)
		}
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}

	user, err := s.users.Get(ctx, stored.UserID)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}
	return user, nil
}

func (s *authService) issueToken(ctx context.Context, user models.User) (*models.AuthResponse, error) {
	log := logger.FromContext(ctx)

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		log.Error("failed to generate token: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now().UTC()
	token := models.AuthToken{
		Token:     hex.EncodeToString(raw),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.users.InsertToken(ctx, token); err != nil {
		log.Error("failed to insert token: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.AuthResponse{
		User:        user,
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}
