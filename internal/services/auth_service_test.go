package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/awalczak/memodeck/internal/errors"
	"github.com/awalczak/memodeck/internal/models"
	"github.com/awalczak/memodeck/internal/testutil/mocks"
)

func newAuthFixture() (*mocks.MockUserRepository, AuthService) {
	users := new(mocks.MockUserRepository)
	return users, NewAuthService(users, 24*time.Hour, fixedNow)
}

func TestSignupIssuesToken(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	users.On("GetByEmail", ctx, "new@example.com").Return(nil, nil)
	users.On("Insert", ctx, mock.MatchedBy(func(u models.User) bool {
		// The hash must verify and must not be the raw password.
		return u.Email == "new@example.com" &&
			u.PasswordHash != "hunter2boogaloo" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2boogaloo")) == nil
	})).Return(nil)
	users.On("InsertToken", ctx, mock.AnythingOfType("models.AuthToken")).Return(nil)

	resp, err := svc.Signup(ctx, "New@Example.com", "hunter2boogaloo")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, testNow.Add(24*time.Hour), resp.ExpiresAt)
	users.AssertExpectations(t)
}

func TestSignupShortPassword(t *testing.T) {
	users, svc := newAuthFixture()

	_, err := svc.Signup(context.Background(), "new@example.com", "short")
	assert.Equal(t, apperrors.ErrCodeValidation, appErr(t, err).Code)
	users.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSignupDuplicateEmail(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	users.On("GetByEmail", ctx, "taken@example.com").Return(&models.User{ID: "u1", Email: "taken@example.com"}, nil)

	_, err := svc.Signup(ctx, "taken@example.com", "longenoughpassword")
	assert.Equal(t, apperrors.ErrCodeConflict, appErr(t, err).Code)
}

func TestSigninWrongCredentials(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "user@example.com").Return(&models.User{ID: "u1", PasswordHash: string(hash)}, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	_, err = svc.Signin(ctx, "user@example.com", "wrong-password")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr(t, err).Code)

	_, err = svc.Signin(ctx, "ghost@example.com", "whatever-password")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr(t, err).Code)
}

func TestSigninSuccess(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "user@example.com").Return(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash)}, nil)
	users.On("InsertToken", ctx, mock.AnythingOfType("models.AuthToken")).Return(nil)

	resp, err := svc.Signin(ctx, "user@example.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Len(t, resp.AccessToken, 64)
}

func TestAuthenticate(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	valid := &models.AuthToken{Token: "good", UserID: "u1", ExpiresAt: testNow.Add(time.Hour)}
	expired := &models.AuthToken{Token: "stale", UserID: "u1", ExpiresAt: testNow.Add(-time.Hour)}
	users.On("GetToken", ctx, "good").Return(valid, nil)
	users.On("GetToken", ctx, "stale").Return(expired, nil)
	users.On("GetToken", ctx, "bogus").Return(nil, nil)
	users.On("Get", ctx, "u1").Return(&models.User{ID: "u1"}, nil)
	users.On("DeleteToken", ctx, "stale").Return(nil)

	user, err := svc.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.Authenticate(ctx, "stale")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr(t, err).Code)
	users.AssertCalled(t, "DeleteToken", ctx, "stale")

	_, err = svc.Authenticate(ctx, "bogus")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr(t, err).Code)

	_, err = svc.Authenticate(ctx, "")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr(t, err).Code)
}
