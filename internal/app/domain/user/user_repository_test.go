package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
)

func TestGetUserByID(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, zap.NewNop())
	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		rows := pgxmock.NewRows([]string{"id", "email", "name", "role", "password_hash", "created_at", "updated_at"}).
			AddRow(userID, "u@example.com", "User One", "member", "hash", now, now)
		mockPool.ExpectQuery("SELECT (.+) FROM users").WithArgs(userID).WillReturnRows(rows)

		user, err := repo.GetUserByID(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "u@example.com", user.Email)
		assert.Equal(t, "member", user.Role)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT (.+) FROM users").WithArgs(userID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetUserByID(context.Background(), userID)
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestUpdateProfile(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, zap.NewNop())
	userID := uuid.New()

	t.Run("Updated", func(t *testing.T) {
		mockPool.ExpectExec("UPDATE users SET name").
			WithArgs(userID, "New Name").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(context.Background(), userID, "New Name")
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MissingUser", func(t *testing.T) {
		mockPool.ExpectExec("UPDATE users SET name").
			WithArgs(userID, "New Name").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateProfile(context.Background(), userID, "New Name")
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
