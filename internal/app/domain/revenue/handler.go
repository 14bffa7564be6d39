package revenue

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/app/services/payments"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Handler serves the revenue/invoice endpoints. Invoice mutations clear the
// revenue and analytics caches, since both aggregate over invoices.
type Handler struct {
	repo     Repository
	payments payments.Provider
	cache    *cache.Manager
	logger   *zap.Logger
	printer  *message.Printer
}

func NewHandler(repo Repository, provider payments.Provider, cacheManager *cache.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		repo:     repo,
		payments: provider,
		cache:    cacheManager,
		logger:   logger,
		printer:  message.NewPrinter(language.English),
	}
}

type createInvoiceRequest struct {
	ProjectID   string `json:"project_id"`
	AmountCents int64  `json:"amount_cents"`
}

// Report returns invoices plus paid/outstanding totals, cached under
// "revenue".
func (h *Handler) Report(c *gin.Context) {
	key := cache.Key("revenue", "")

	if report, ok := h.cache.Revenue.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "private, max-age=30")
		c.JSON(http.StatusOK, report)
		return
	}

	invoices, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}

	var paid, outstanding int64
	for _, inv := range invoices {
		switch inv.Status {
		case "paid":
			paid += inv.AmountCents
		case "sent":
			outstanding += inv.AmountCents
		}
	}
	report := models.RevenueReport{
		Invoices:         invoices,
		PaidCents:        paid,
		OutstandingCents: outstanding,
		PaidFormatted:    h.printer.Sprintf("$%.2f", float64(paid)/100),
	}

	h.cache.Revenue.Set(key, report)
	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, report)
}

// CreateInvoice issues an invoice and opens a payment intent so the client
// can pay it online.
func (h *Handler) CreateInvoice(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AmountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and a positive amount are required"})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
		return
	}

	invoice := models.Invoice{
		ID:          uuid.New(),
		UserID:      userID,
		ProjectID:   projectID,
		AmountCents: req.AmountCents,
		Status:      "sent",
	}
	if err := h.repo.Create(c.Request.Context(), invoice); err != nil {
		h.logger.Error("Failed to create invoice", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invoice"})
		return
	}

	var clientSecret string
	if h.payments != nil {
		_, secret, err := h.payments.CreatePaymentIntent(invoice.AmountCents, "usd", map[string]string{
			"invoice_id": invoice.ID.String(),
			"project_id": projectID.String(),
		})
		if err != nil {
			// The invoice stands even when the payment intent fails;
			// payment can be retried out of band.
			h.logger.Warn("Failed to create payment intent", zap.Error(err))
		} else {
			clientSecret = secret
		}
	}

	h.cache.Revenue.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusCreated, gin.H{
		"invoice":               invoice,
		"payment_client_secret": clientSecret,
	})
}

// MarkPaid settles an invoice and invalidates the aggregates.
func (h *Handler) MarkPaid(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	if err := h.repo.MarkPaid(c.Request.Context(), invoiceID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
			return
		}
		h.logger.Error("Failed to mark invoice paid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark invoice paid"})
		return
	}

	h.cache.Revenue.Clear()
	h.cache.Analytics.Clear()
	c.Status(http.StatusNoContent)
}
