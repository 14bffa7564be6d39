package clients

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Handler serves the client endpoints. Reads go through the response cache;
// every mutation clears it (no per-key invalidation signal exists).
type Handler struct {
	repo   Repository
	cache  *cache.Manager
	logger *zap.Logger
}

func NewHandler(repo Repository, cacheManager *cache.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

type upsertClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Status  string `json:"status"`
}

// List returns all clients, optionally filtered by ?status=.
func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")
	key := cache.Key("clients", status)

	if clients, ok := h.cache.Clients.Get(key); ok {
		writeCacheHeaders(c, "HIT")
		c.JSON(http.StatusOK, clients)
		return
	}

	clients, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}

	h.cache.Clients.Set(key, clients)
	writeCacheHeaders(c, "MISS")
	c.JSON(http.StatusOK, clients)
}

// Get returns a single client by ID. Point lookups skip the cache.
func (h *Handler) Get(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	client, err := h.repo.Get(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("Failed to get client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get client"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// Create adds a client and invalidates the cached listings.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req upsertClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}
	if req.Status == "" {
		req.Status = "active"
	}

	client := models.Client{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Status:  req.Status,
	}
	if err := h.repo.Create(c.Request.Context(), client); err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}

	h.cache.Clients.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusCreated, client)
}

// Update rewrites a client and invalidates the cached listings.
func (h *Handler) Update(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req upsertClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	client := models.Client{
		ID:      clientID,
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Status:  req.Status,
	}
	if err := h.repo.Update(c.Request.Context(), client); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("Failed to update client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}

	h.cache.Clients.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusOK, client)
}

// Delete removes a client and invalidates the cached listings.
func (h *Handler) Delete(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		h.logger.Error("Failed to delete client", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		return
	}

	h.cache.Clients.Clear()
	h.cache.Analytics.Clear()
	c.Status(http.StatusNoContent)
}

// writeCacheHeaders marks hit/miss status for downstream caches.
func writeCacheHeaders(c *gin.Context, status string) {
	c.Header("X-Cache", status)
	c.Header("Cache-Control", "private, max-age=30")
}
