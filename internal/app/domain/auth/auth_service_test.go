package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallyapp/tally/internal/app/models"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepo) Register(ctx context.Context, name, email, hashedPassword, role string) (uuid.UUID, error) {
	args := m.Called(ctx, name, email, hashedPassword, role)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, userID, hashedPassword)
	return args.Error(0)
}

func testUser(t *testing.T, password string, role Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &models.User{
		ID:       uuid.New(),
		Email:    "test@example.com",
		Name:     "Test User",
		Role:     string(role),
		Password: string(hashed),
	}
}

func TestSignIn(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		user := testUser(t, "password123", RoleMember)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

		token, expiresAt, err := service.SignIn(ctx, user.Email, "password123", "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(SessionTTL), expiresAt, time.Second)

		claims, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, RoleMember, claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, models.ErrNotFound).Once()

		_, _, err := service.SignIn(ctx, "nobody@example.com", "whatever", "10.0.0.1")
		assert.True(t, errors.Is(err, models.ErrUnauthenticated))
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		user := testUser(t, "correct-password", RoleMember)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

		_, _, err := service.SignIn(ctx, user.Email, "wrong-password", "10.0.0.1")
		assert.True(t, errors.Is(err, models.ErrUnauthenticated))
		mockRepo.AssertExpectations(t)
	})

	t.Run("ThrottledAfterRepeatedFailures", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		user := testUser(t, "correct-password", RoleMember)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Times(maxSignInAttempts)

		for i := 0; i < maxSignInAttempts; i++ {
			_, _, err := service.SignIn(ctx, user.Email, "wrong-password", "10.0.0.9")
			assert.True(t, errors.Is(err, models.ErrUnauthenticated))
		}

		// The next attempt is refused before the repository is consulted,
		// even with the right password.
		_, _, err := service.SignIn(ctx, user.Email, "correct-password", "10.0.0.9")
		assert.True(t, errors.Is(err, models.ErrTooManyAttempts))
		mockRepo.AssertExpectations(t)
	})

	t.Run("SuccessResetsAttemptCounter", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		user := testUser(t, "password123", RoleMember)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil)

		for i := 0; i < maxSignInAttempts-1; i++ {
			_, _, err := service.SignIn(ctx, user.Email, "wrong", "10.0.0.7")
			assert.Error(t, err)
		}

		_, _, err := service.SignIn(ctx, user.Email, "password123", "10.0.0.7")
		require.NoError(t, err)

		// The counter was cleared, so failures can start over.
		_, _, err = service.SignIn(ctx, user.Email, "wrong", "10.0.0.7")
		assert.True(t, errors.Is(err, models.ErrUnauthenticated))
	})
}

func TestRegister(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		newID := uuid.New()
		mockRepo.On("Register", ctx, "New User", "new@example.com",
			mock.AnythingOfType("string"), string(RoleMember)).Return(newID, nil).Once()

		err := service.Register(ctx, "New User", "new@example.com", "password123")
		require.NoError(t, err)

		// The stored password must be a bcrypt hash of the input, never the
		// plaintext.
		hashed := mockRepo.Calls[0].Arguments.String(3)
		assert.NotEqual(t, "password123", hashed)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("password123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryFailure", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, codec, zap.NewNop())
		ctx := context.Background()

		mockRepo.On("Register", ctx, "Dup User", "dup@example.com",
			mock.AnythingOfType("string"), string(RoleMember)).
			Return(uuid.Nil, fmt.Errorf("duplicate email")).Once()

		err := service.Register(ctx, "Dup User", "dup@example.com", "password123")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}
