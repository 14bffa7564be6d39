package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tallyapp/tally/internal/app/models"
)

const (
	// SessionCookieName is the fixed name of the session cookie.
	SessionCookieName = "session"

	// SessionTTL is the sliding validity window. Every successful read-time
	// validation re-signs the claims with expiry = now + SessionTTL.
	SessionTTL = 24 * time.Hour
)

// Role is the authorization tier carried in session claims.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// CanAdmin reports whether the role grants access to admin routes.
func (r Role) CanAdmin() bool {
	return r == RoleAdmin || r == RoleOwner
}

// SessionClaims is the decoded payload of a session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs a claim set into an opaque token and verifies a token
// back into claims. Injected so the middleware stays testable with any
// key material.
type TokenCodec interface {
	Sign(claims SessionClaims) (string, error)
	Verify(token string) (*SessionClaims, error)
}

var _ TokenCodec = (*JWTCodec)(nil)

// JWTCodec is the production codec: HMAC-SHA256 signed JWTs.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret)}
}

// Sign serializes and signs the claims.
func (c *JWTCodec) Sign(claims SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Any signature, format or expiry
// failure comes back as models.ErrInvalidToken.
func (c *JWTCodec) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// NewSessionClaims builds a claim set for a freshly signed-in user.
func NewSessionClaims(userID, email string, role Role, now time.Time) SessionClaims {
	return SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
}

// RenewClaims copies the claims with expiry extended to now + SessionTTL.
// Every other field is preserved.
func RenewClaims(claims SessionClaims, now time.Time) SessionClaims {
	renewed := claims
	renewed.ExpiresAt = jwt.NewNumericDate(now.Add(SessionTTL))
	return renewed
}

// Renew re-signs the claims with a slid expiry and returns the new token
// alongside the new expiry, so the caller can rewrite the cookie.
func Renew(codec TokenCodec, claims SessionClaims, now time.Time) (string, time.Time, error) {
	renewed := RenewClaims(claims, now)
	token, err := codec.Sign(renewed)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to renew session: %w", err)
	}
	return token, renewed.ExpiresAt.Time, nil
}
