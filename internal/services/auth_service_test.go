package services

import (
	"context"
	"testing"

	"github.com/openquiz/quiz-service/internal/models"
	"github.com/openquiz/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthService(repo *MockRepository) AuthService {
	return NewAuthService(repo, testLogger(), validator.New(), stubTokenIssuer{token: "test-token"})
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	repo.user.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.user.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
	repo.user.On("Create", mock.Anything, mock.MatchedBy(func(user *models.User) bool {
		if user.Username != "alice" || user.Email != "alice@example.com" {
			return false
		}
		// The stored credential must be a working bcrypt hash, never the
		// plaintext password.
		return user.PasswordHash != "s3cretpass" &&
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpass")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil)

	resp, err := service.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-token", resp.AccessToken)
	assert.Equal(t, uint(7), resp.UserID)
	assert.Equal(t, "alice", resp.Username)

	repo.AssertExpectations(t)
}

func TestAuthService_RegisterUsernameTaken(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	repo.user.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

	_, err := service.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.True(t, IsConflict(err))

	repo.AssertExpectations(t)
}

func TestAuthService_RegisterEmailTaken(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	repo.user.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.user.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(true, nil)

	_, err := service.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	repo.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicateRace(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	repo.user.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.user.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
	repo.user.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := service.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	assert.True(t, IsConflict(err))

	repo.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@example.com", Password: "s3cretpass"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "not-an-email", Password: "s3cretpass"}},
		{"short password", RegisterRequest{Username: "alice", Email: "a@example.com", Password: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), &tt.req)
			assert.True(t, IsValidation(err))
		})
	}

	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.user.On("GetByUsername", mock.Anything, "alice").Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: string(hash),
	}, nil)

	resp, err := service.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "s3cretpass",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-token", resp.AccessToken)
	assert.Equal(t, uint(7), resp.UserID)

	repo.AssertExpectations(t)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.user.On("GetByUsername", mock.Anything, "alice").Return(&models.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: string(hash),
	}, nil)

	_, err = service.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "wrongpass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, IsUnauthorized(err))

	repo.AssertExpectations(t)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	repo := newMockRepository()
	service := newAuthService(repo)

	repo.user.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Login(context.Background(), &LoginRequest{
		Username: "ghost",
		Password: "whatever1",
	})
	// Unknown user and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.AssertExpectations(t)
}
