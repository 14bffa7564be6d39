package projects

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/middleware"
	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// Handler serves the project endpoints with the same cache-around-read
// pattern as the clients domain.
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

type upsertProjectRequest struct {
	ClientID   string     `json:"client_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	HourlyRate int64      `json:"hourly_rate_cents"`
	Deadline   *time.Time `json:"deadline"`
}

func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")
	key := cache.Key("projects", status)

	if projects, ok := h.cache.Projects.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "private, max-age=30")
		c.JSON(http.StatusOK, projects)
		return
	}

	projects, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	h.cache.Projects.Set(key, projects)
	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.repo.Get(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Failed to get project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserUUIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req upsertProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and client_id are required"})
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	if req.Status == "" {
		req.Status = "active"
	}

	project := models.Project{
		ID:         uuid.New(),
		UserID:     userID,
		ClientID:   clientID,
		Name:       req.Name,
		Status:     req.Status,
		HourlyRate: req.HourlyRate,
		Deadline:   req.Deadline,
	}
	if err := h.repo.Create(c.Request.Context(), project); err != nil {
		h.logger.Error("Failed to create project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	h.cache.Projects.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) Update(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req upsertProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	project := models.Project{
		ID:         projectID,
		Name:       req.Name,
		Status:     req.Status,
		HourlyRate: req.HourlyRate,
		Deadline:   req.Deadline,
	}
	if err := h.repo.Update(c.Request.Context(), project); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Failed to update project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	h.cache.Projects.Clear()
	h.cache.Analytics.Clear()
	c.JSON(http.StatusOK, project)
}

func (h *Handler) Delete(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), projectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Failed to delete project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	h.cache.Projects.Clear()
	h.cache.Analytics.Clear()
	c.Status(http.StatusNoContent)
}
