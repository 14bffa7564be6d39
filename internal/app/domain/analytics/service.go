package analytics

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tallyapp/tally/internal/app/models"
)

// ClientCounter, ProjectCounter, ExpenseTotaler and RevenueTotaler are the
// slices of the domain repositories the analytics fan-out needs.
type ClientCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type ProjectCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type ExpenseTotaler interface {
	TotalCents(ctx context.Context) (int64, error)
}

type RevenueTotaler interface {
	PaidCents(ctx context.Context) (int64, error)
}

// Service computes the dashboard summary by fanning the four aggregate
// queries out in parallel.
type Service struct {
	clients  ClientCounter
	projects ProjectCounter
	expenses ExpenseTotaler
	revenue  RevenueTotaler
	logger   *zap.Logger
}

func NewService(clients ClientCounter, projects ProjectCounter, expenses ExpenseTotaler, revenue RevenueTotaler, logger *zap.Logger) *Service {
	return &Service{
		clients:  clients,
		projects: projects,
		expenses: expenses,
		revenue:  revenue,
		logger:   logger,
	}
}

// Summary runs the aggregates concurrently and assembles the payload.
func (s *Service) Summary(ctx context.Context) (models.AnalyticsSummary, error) {
	var summary models.AnalyticsSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.clients.CountByStatus(gctx, "active")
		if err != nil {
			return fmt.Errorf("active clients: %w", err)
		}
		summary.ActiveClients = count
		return nil
	})
	g.Go(func() error {
		count, err := s.projects.CountByStatus(gctx, "active")
		if err != nil {
			return fmt.Errorf("active projects: %w", err)
		}
		summary.ActiveProjects = count
		return nil
	})
	g.Go(func() error {
		total, err := s.expenses.TotalCents(gctx)
		if err != nil {
			return fmt.Errorf("expense total: %w", err)
		}
		summary.ExpenseCents = total
		return nil
	})
	g.Go(func() error {
		total, err := s.revenue.PaidCents(gctx)
		if err != nil {
			return fmt.Errorf("revenue total: %w", err)
		}
		summary.RevenueCents = total
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Analytics fan-out failed", zap.Error(err))
		return models.AnalyticsSummary{}, fmt.Errorf("failed to compute analytics: %w", err)
	}

	summary.ProfitCents = summary.RevenueCents - summary.ExpenseCents
	return summary, nil
}
