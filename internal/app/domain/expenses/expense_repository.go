package expenses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for expense operations.
type Repository interface {
	List(ctx context.Context) ([]models.Expense, error)
	Create(ctx context.Context, expense models.Expense) error
	Delete(ctx context.Context, expenseID uuid.UUID) error
	TotalCents(ctx context.Context) (int64, error)
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

func (r *RepositoryImpl) List(ctx context.Context) ([]models.Expense, error) {
	query := `
        SELECT id, user_id, category, description, amount_cents, incurred_at, created_at
        FROM expenses
        ORDER BY incurred_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(
			&expense.ID, &expense.UserID, &expense.Category, &expense.Description,
			&expense.AmountCents, &expense.IncurredAt, &expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func (r *RepositoryImpl) Create(ctx context.Context, expense models.Expense) error {
	query := `
        INSERT INTO expenses (id, user_id, category, description, amount_cents, incurred_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	_, err := r.pgpool.Exec(ctx, query,
		expense.ID, expense.UserID, expense.Category, expense.Description,
		expense.AmountCents, expense.IncurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, expenseID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// TotalCents is used by the analytics fan-out.
func (r *RepositoryImpl) TotalCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.pgpool.QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total expenses: %w", err)
	}
	return total, nil
}
