package auth

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallyapp/tally/internal/app/models"
)

const (
	maxSignInAttempts  = 5
	attemptWindow      = 15 * time.Minute
	attemptSweepPeriod = 5 * time.Minute
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the sign-in/sign-up business logic contract.
type AuthService interface {
	SignIn(ctx context.Context, email, password, clientIP string) (token string, expiresAt time.Time, err error)
	Register(ctx context.Context, name, email, password string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthServiceImpl validates credentials and issues session tokens.
type AuthServiceImpl struct {
	logger   *zap.Logger
	repo     AuthRepo
	codec    TokenCodec
	attempts *gocache.Cache
}

// NewAuthService creates a new authentication service instance. Failed
// sign-in attempts are counted per client IP in a TTL cache so brute-force
// runs back off automatically.
func NewAuthService(repo AuthRepo, codec TokenCodec, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:   logger,
		repo:     repo,
		codec:    codec,
		attempts: gocache.New(attemptWindow, attemptSweepPeriod),
	}
}

// SignIn validates credentials and returns a freshly signed session token.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, clientIP string) (string, time.Time, error) {
	l := s.logger.With(zap.String("method", "SignIn"), zap.String("email", email))

	if s.throttled(clientIP) {
		l.Warn("Sign-in throttled", zap.String("ip", clientIP))
		return "", time.Time{}, models.ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.recordFailure(clientIP)
		l.Warn("GetUserByEmail failed", zap.Error(err))
		// Don't reveal whether the account exists
		return "", time.Time{}, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.recordFailure(clientIP)
		l.Warn("Password comparison failed", zap.String("user_id", user.ID.String()))
		return "", time.Time{}, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	now := time.Now()
	claims := NewSessionClaims(user.ID.String(), user.Email, Role(user.Role), now)
	token, err := s.codec.Sign(claims)
	if err != nil {
		l.Error("Failed to sign session token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("internal error generating token: %w", err)
	}

	s.attempts.Delete(clientIP)
	l.Info("Sign-in successful", zap.String("user_id", user.ID.String()))
	return token, claims.ExpiresAt.Time, nil
}

// Register hashes the password and stores a new member account.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) error {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("could not process password")
	}

	userID, err := s.repo.Register(ctx, name, email, string(hashed), string(RoleMember))
	if err != nil {
		l.Error("Repository registration failed", zap.Error(err))
		return fmt.Errorf("registration failed: %w", err)
	}

	l.Info("Registration successful", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthServiceImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *AuthServiceImpl) throttled(clientIP string) bool {
	if clientIP == "" {
		return false
	}
	if count, found := s.attempts.Get(clientIP); found {
		if n, ok := count.(int); ok && n >= maxSignInAttempts {
			return true
		}
	}
	return false
}

func (s *AuthServiceImpl) recordFailure(clientIP string) {
	if clientIP == "" {
		return
	}
	if _, err := s.attempts.IncrementInt(clientIP, 1); err != nil {
		s.attempts.Set(clientIP, 1, attemptWindow)
	}
}
