package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Repo is the slice of the auth repository the profile endpoints need.
type Repo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name string) error
}

// Handler serves the profile endpoints, cached per user under "user-<id>".
type Handler struct {
	repo   Repo
	cache  *cache.Manager
	logger *zap.Logger
}

func NewHandler(repo Repo, cacheManager *cache.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// Profile returns the authenticated user's account record.
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	key := cache.Key("user", userID.String())
	if user, found := h.cache.Users.Get(key); found {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "private, max-age=30")
		c.JSON(http.StatusOK, user)
		return
	}

	user, err := h.repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	h.cache.Users.Set(key, *user)
	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, user)
}

// UpdateProfile rewrites the display name and invalidates the cached copy.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.repo.UpdateProfile(c.Request.Context(), userID, req.Name); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("Failed to update profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	h.cache.Users.Delete(cache.Key("user", userID.String()))
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
