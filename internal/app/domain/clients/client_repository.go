package clients

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for client operations.
type Repository interface {
	List(ctx context.Context, status string) ([]models.Client, error)
	Get(ctx context.Context, clientID uuid.UUID) (models.Client, error)
	Create(ctx context.Context, client models.Client) error
	Update(ctx context.Context, client models.Client) error
	Delete(ctx context.Context, clientID uuid.UUID) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// RepositoryImpl holds the logger and database connection pool.
type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// List returns the workspace's clients, optionally filtered by status.
func (r *RepositoryImpl) List(ctx context.Context, status string) ([]models.Client, error) {
	builder := psql.
		Select("id", "user_id", "name", "email", "company", "status", "created_at", "updated_at").
		From("clients").
		OrderBy("created_at DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build clients query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(
			&client.ID, &client.UserID, &client.Name, &client.Email,
			&client.Company, &client.Status, &client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, clientID uuid.UUID) (models.Client, error) {
	query := `
        SELECT id, user_id, name, email, company, status, created_at, updated_at
        FROM clients
        WHERE id = $1
    `
	var client models.Client
	err := r.pgpool.QueryRow(ctx, query, clientID).Scan(
		&client.ID, &client.UserID, &client.Name, &client.Email,
		&client.Company, &client.Status, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, models.ErrNotFound
		}
		r.logger.Error("Failed to get client", zap.Error(err))
		return models.Client{}, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, client models.Client) error {
	query := `
        INSERT INTO clients (id, user_id, name, email, company, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	_, err := r.pgpool.Exec(ctx, query,
		client.ID, client.UserID, client.Name, client.Email, client.Company, client.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create client", zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Update(ctx context.Context, client models.Client) error {
	query := `
        UPDATE clients
        SET name = $2, email = $3, company = $4, status = $5, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		client.ID, client.Name, client.Email, client.Company, client.Status,
	)
	if err != nil {
		r.logger.Error("Failed to update client", zap.Error(err))
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, clientID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
	if err != nil {
		r.logger.Error("Failed to delete client", zap.Error(err))
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountByStatus is used by the analytics fan-out.
func (r *RepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}
