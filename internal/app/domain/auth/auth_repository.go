package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the persistence contract for accounts.
type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Register(ctx context.Context, name, email, hashedPassword, role string) (uuid.UUID, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
}

// PostgresAuthRepo holds the logger and database connection pool.
type PostgresAuthRepo struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *zap.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
        SELECT id, email, name, role, password_hash, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	row := r.pgpool.QueryRow(ctx, query, email)
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
        SELECT id, email, name, role, password_hash, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	row := r.pgpool.QueryRow(ctx, query, userID)
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user by id", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) Register(ctx context.Context, name, email, hashedPassword, role string) (uuid.UUID, error) {
	query := `
        INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id
    `
	id := uuid.New()
	var returned uuid.UUID
	err := r.pgpool.QueryRow(ctx, query, id, email, name, role, hashedPassword).Scan(&returned)
	if err != nil {
		r.logger.Error("Failed to register user", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to register user: %w", err)
	}
	return returned, nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	query := `
        UPDATE users SET password_hash = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query, userID, hashedPassword)
	if err != nil {
		r.logger.Error("Failed to update password", zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
