package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
)

// Manager owns one named response cache per logical resource. It is created
// at process start and injected into handlers; nothing reaches it as a
// global.
type Manager struct {
	Users     *ResponseCache[models.User]
	Clients   *ResponseCache[[]models.Client]
	Projects  *ResponseCache[[]models.Project]
	Expenses  *ResponseCache[models.ExpenseReport]
	Revenue   *ResponseCache[models.RevenueReport]
	Analytics *ResponseCache[models.AnalyticsSummary]
}

// NewManager creates the full cache set with a shared TTL.
func NewManager(ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		Users:     NewResponseCache[models.User](ttl, "user", logger),
		Clients:   NewResponseCache[[]models.Client](ttl, "clients", logger),
		Projects:  NewResponseCache[[]models.Project](ttl, "projects", logger),
		Expenses:  NewResponseCache[models.ExpenseReport](ttl, "expenses", logger),
		Revenue:   NewResponseCache[models.RevenueReport](ttl, "revenue", logger),
		Analytics: NewResponseCache[models.AnalyticsSummary](ttl, "analytics", logger),
	}
}

// GetAllMetrics returns counters for every cache, keyed by resource name.
func (m *Manager) GetAllMetrics() map[string]Metrics {
	return map[string]Metrics{
		"user":      m.Users.GetMetrics(),
		"clients":   m.Clients.GetMetrics(),
		"projects":  m.Projects.GetMetrics(),
		"expenses":  m.Expenses.GetMetrics(),
		"revenue":   m.Revenue.GetMetrics(),
		"analytics": m.Analytics.GetMetrics(),
	}
}

// ClearAll drops every cached payload.
func (m *Manager) ClearAll() {
	m.Users.Clear()
	m.Clients.Clear()
	m.Projects.Clear()
	m.Expenses.Clear()
	m.Revenue.Clear()
	m.Analytics.Clear()
}
