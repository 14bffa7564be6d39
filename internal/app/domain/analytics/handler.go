package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Handler serves the analytics summary, cached under "analytics".
type Handler struct {
	service *Service
	cache   *cache.Manager
	logger  *zap.Logger
}

func NewHandler(service *Service, cacheManager *cache.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cache:   cacheManager,
		logger:  logger,
	}
}

// Summary returns the dashboard aggregates. Concurrent misses recompute
// independently; the last Set wins, which is fine within the TTL window.
func (h *Handler) Summary(c *gin.Context) {
	key := cache.Key("analytics", "")

	if summary, ok := h.cache.Analytics.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "private, max-age=30")
		c.JSON(http.StatusOK, summary)
		return
	}

	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
		return
	}

	h.cache.Analytics.Set(key, summary)
	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, summary)
}
