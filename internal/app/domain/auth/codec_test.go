package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/app/models"
)

func TestJWTCodecSignVerify(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	now := time.Now()

	t.Run("RoundTrip", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "owner@example.com", RoleOwner, now)

		token, err := codec.Sign(claims)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		decoded, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", decoded.UserID)
		assert.Equal(t, "owner@example.com", decoded.Email)
		assert.Equal(t, RoleOwner, decoded.Role)
	})

	t.Run("TamperedTokenRejected", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@example.com", RoleMember, now)
		token, err := codec.Sign(claims)
		require.NoError(t, err)

		// Flip a character in the payload segment.
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		payload := []byte(parts[1])
		if payload[0] == 'A' {
			payload[0] = 'B'
		} else {
			payload[0] = 'A'
		}
		tampered := parts[0] + "." + string(payload) + "." + parts[2]

		_, err = codec.Verify(tampered)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidToken))
	})

	t.Run("WrongSecretRejected", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@example.com", RoleMember, now)
		token, err := codec.Sign(claims)
		require.NoError(t, err)

		other := NewJWTCodec("another-secret")
		_, err = other.Verify(token)
		assert.True(t, errors.Is(err, models.ErrInvalidToken))
	})

	t.Run("ExpiredTokenRejected", func(t *testing.T) {
		claims := NewSessionClaims("user-1", "a@example.com", RoleMember, now.Add(-48*time.Hour))
		token, err := codec.Sign(claims)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		assert.True(t, errors.Is(err, models.ErrInvalidToken))
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, err := codec.Verify("not-a-token")
		assert.True(t, errors.Is(err, models.ErrInvalidToken))
	})
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Now()
	claims := NewSessionClaims("user-9", "m@example.com", RoleMember, now)

	assert.Equal(t, "user-9", claims.UserID)
	assert.Equal(t, RoleMember, claims.Role)
	assert.WithinDuration(t, now.Add(SessionTTL), claims.ExpiresAt.Time, time.Second)
	assert.WithinDuration(t, now, claims.IssuedAt.Time, time.Second)
}

func TestRenewClaims(t *testing.T) {
	issued := time.Now().Add(-10 * time.Hour)
	original := NewSessionClaims("user-9", "m@example.com", RoleAdmin, issued)

	now := time.Now()
	renewed := RenewClaims(original, now)

	// Expiry slides to now + TTL; everything else is untouched.
	assert.WithinDuration(t, now.Add(SessionTTL), renewed.ExpiresAt.Time, time.Second)
	assert.Equal(t, original.UserID, renewed.UserID)
	assert.Equal(t, original.Email, renewed.Email)
	assert.Equal(t, original.Role, renewed.Role)
	assert.Equal(t, original.IssuedAt, renewed.IssuedAt)
}

func TestRenew(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	claims := NewSessionClaims("user-9", "m@example.com", RoleMember, time.Now().Add(-12*time.Hour))

	now := time.Now()
	token, expiresAt, err := Renew(codec, claims, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(SessionTTL), expiresAt, time.Second)

	decoded, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", decoded.UserID)
	assert.WithinDuration(t, expiresAt, decoded.ExpiresAt.Time, time.Second)
}

func TestRoleCanAdmin(t *testing.T) {
	assert.False(t, RoleMember.CanAdmin())
	assert.True(t, RoleAdmin.CanAdmin())
	assert.True(t, RoleOwner.CanAdmin())
	assert.False(t, Role("intern").CanAdmin())
}
