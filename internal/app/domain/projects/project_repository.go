package projects

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

// Repository defines the interface for project operations.
type Repository interface {
	List(ctx context.Context, status string) ([]models.Project, error)
	Get(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	Create(ctx context.Context, project models.Project) error
	Update(ctx context.Context, project models.Project) error
	Delete(ctx context.Context, projectID uuid.UUID) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

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

func (r *RepositoryImpl) List(ctx context.Context, status string) ([]models.Project, error) {
	builder := psql.
		Select("id", "user_id", "client_id", "name", "status", "hourly_rate_cents", "deadline", "created_at", "updated_at").
		From("projects").
		OrderBy("created_at DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build projects query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID, &project.UserID, &project.ClientID, &project.Name, &project.Status,
			&project.HourlyRate, &project.Deadline, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	query := `
        SELECT id, user_id, client_id, name, status, hourly_rate_cents, deadline, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var project models.Project
	err := r.pgpool.QueryRow(ctx, query, projectID).Scan(
		&project.ID, &project.UserID, &project.ClientID, &project.Name, &project.Status,
		&project.HourlyRate, &project.Deadline, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Project{}, models.ErrNotFound
		}
		r.logger.Error("Failed to get project", zap.Error(err))
		return models.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, project models.Project) error {
	query := `
        INSERT INTO projects (id, user_id, client_id, name, status, hourly_rate_cents, deadline, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
    `
	_, err := r.pgpool.Exec(ctx, query,
		project.ID, project.UserID, project.ClientID, project.Name,
		project.Status, project.HourlyRate, project.Deadline,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Update(ctx context.Context, project models.Project) error {
	query := `
        UPDATE projects
        SET name = $2, status = $3, hourly_rate_cents = $4, deadline = $5, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		project.ID, project.Name, project.Status, project.HourlyRate, project.Deadline,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Error(err))
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, projectID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Error(err))
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}
