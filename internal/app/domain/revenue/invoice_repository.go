package revenue

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

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for invoice operations.
type Repository interface {
	List(ctx context.Context) ([]models.Invoice, error)
	Get(ctx context.Context, invoiceID uuid.UUID) (models.Invoice, error)
	Create(ctx context.Context, invoice models.Invoice) error
	MarkPaid(ctx context.Context, invoiceID uuid.UUID) error
	PaidCents(ctx context.Context) (int64, error)
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

func (r *RepositoryImpl) List(ctx context.Context) ([]models.Invoice, error) {
	query := `
        SELECT id, user_id, project_id, amount_cents, status, issued_at, paid_at
        FROM invoices
        ORDER BY issued_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		if err := rows.Scan(
			&invoice.ID, &invoice.UserID, &invoice.ProjectID, &invoice.AmountCents,
			&invoice.Status, &invoice.IssuedAt, &invoice.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *RepositoryImpl) Get(ctx context.Context, invoiceID uuid.UUID) (models.Invoice, error) {
	query := `
        SELECT id, user_id, project_id, amount_cents, status, issued_at, paid_at
        FROM invoices
        WHERE id = $1
    `
	var invoice models.Invoice
	err := r.pgpool.QueryRow(ctx, query, invoiceID).Scan(
		&invoice.ID, &invoice.UserID, &invoice.ProjectID, &invoice.AmountCents,
		&invoice.Status, &invoice.IssuedAt, &invoice.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Invoice{}, models.ErrNotFound
		}
		r.logger.Error("Failed to get invoice", zap.Error(err))
		return models.Invoice{}, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, invoice models.Invoice) error {
	query := `
        INSERT INTO invoices (id, user_id, project_id, amount_cents, status, issued_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
    `
	_, err := r.pgpool.Exec(ctx, query,
		invoice.ID, invoice.UserID, invoice.ProjectID, invoice.AmountCents, invoice.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) MarkPaid(ctx context.Context, invoiceID uuid.UUID) error {
	query := `
        UPDATE invoices SET status = 'paid', paid_at = NOW()
        WHERE id = $1 AND status <> 'void'
    `
	tag, err := r.pgpool.Exec(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", zap.Error(err))
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PaidCents is used by the analytics fan-out.
func (r *RepositoryImpl) PaidCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.pgpool.QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM invoices WHERE status = 'paid'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total paid invoices: %w", err)
	}
	return total, nil
}
