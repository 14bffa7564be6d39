package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record backing a session.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client is a customer of the tenant's business.
type Client struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status"` // active, archived
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a billable engagement for a client.
type Project struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ClientID   uuid.UUID  `json:"client_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"` // active, paused, done
	HourlyRate int64      `json:"hourly_rate_cents"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Expense is a cost entry booked against the business.
type Expense struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	IncurredAt  time.Time `json:"incurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Invoice tracks billing against a project; revenue aggregates sum the
// paid ones.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"` // draft, sent, paid, void
	IssuedAt    time.Time  `json:"issued_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// ExpenseReport is the cached payload for the expenses read endpoint.
type ExpenseReport struct {
	Expenses       []Expense `json:"expenses"`
	TotalCents     int64     `json:"total_cents"`
	TotalFormatted string    `json:"total_formatted"`
}

// RevenueReport is the cached payload for the revenue read endpoint.
type RevenueReport struct {
	Invoices         []Invoice `json:"invoices"`
	PaidCents        int64     `json:"paid_cents"`
	OutstandingCents int64     `json:"outstanding_cents"`
	PaidFormatted    string    `json:"paid_formatted"`
}

// AnalyticsSummary is the cached payload for the analytics read endpoint.
type AnalyticsSummary struct {
	ActiveClients  int64 `json:"active_clients"`
	ActiveProjects int64 `json:"active_projects"`
	RevenueCents   int64 `json:"revenue_cents"`
	ExpenseCents   int64 `json:"expense_cents"`
	ProfitCents    int64 `json:"profit_cents"`
}
