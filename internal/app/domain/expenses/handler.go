package expenses

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Handler serves the expense endpoints.
type Handler struct {
	repo    Repository
	cache   *cache.Manager
	logger  *zap.Logger
	printer *message.Printer
}

func NewHandler(repo Repository, cacheManager *cache.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		repo:    repo,
		cache:   cacheManager,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

type createExpenseRequest struct {
	Category    string     `json:"category"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	IncurredAt  *time.Time `json:"incurred_at"`
}

// Report returns the expense listing with totals, cached under "expenses".
func (h *Handler) Report(c *gin.Context) {
	key := cache.Key("expenses", "")

	if report, ok := h.cache.Expenses.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "private, max-age=30")
		c.JSON(http.StatusOK, report)
		return
	}

	expenses, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list expenses"})
		return
	}

	var total int64
	for _, e := range expenses {
		total += e.AmountCents
	}
	report := models.ExpenseReport{
		Expenses:       expenses,
		TotalCents:     total,
		TotalFormatted: h.formatCents(total),
	}

	h.cache.Expenses.Set(key, report)
	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, report)
}

// Create books an expense and invalidates the expense and analytics caches.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Category == "" || req.AmountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and a positive amount are required"})
		return
	}

	incurredAt := time.Now()
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	expense := models.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    req.Category,
		Description: req.Description,
		AmountCents: req.AmountCents,
		IncurredAt:  incurredAt,
	}
	if err := h.repo.Create(c.Request.Context(), expense); err != nil {
		h.logger.Error("Failed to create expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create expense"})
		return
	}

	h.cache.Expenses.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusCreated, expense)
}

// Delete removes an expense and invalidates the caches.
func (h *Handler) Delete(c *gin.Context) {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), expenseID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
			return
		}
		h.logger.Error("Failed to delete expense", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete expense"})
		return
	}

	h.cache.Expenses.Clear()
	h.cache.Analytics.Clear()
	c.Status(http.StatusNoContent)
}

func (h *Handler) formatCents(cents int64) string {
	return h.printer.Sprintf("$%.2f", float64(cents)/100)
}
