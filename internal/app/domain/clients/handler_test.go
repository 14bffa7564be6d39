package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/app/models"
	"github.com/tallyapp/tally/internal/pkg/cache"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, status string) ([]models.Client, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, clientID uuid.UUID) (models.Client, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(models.Client), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, client models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, client models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func newTestHandler(repo Repository, ttl time.Duration) (*Handler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	manager := cache.NewManager(ttl, zap.NewNop())
	h := NewHandler(repo, manager, zap.NewNop())

	userID := uuid.New()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	r.GET("/api/clients", h.List)
	r.GET("/api/clients/:id", h.Get)
	r.POST("/api/clients", h.Create)
	r.PUT("/api/clients/:id", h.Update)
	r.DELETE("/api/clients/:id", h.Delete)
	return h, r
}

func listClients(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListCaching(t *testing.T) {
	sample := []models.Client{
		{ID: uuid.New(), Name: "Acme", Email: "acme@example.com", Status: "active"},
	}

	t.Run("MissThenHit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 30*time.Second)

		// Only the first request may touch the repository.
		mockRepo.On("List", mock.Anything, "").Return(sample, nil).Once()

		w := listClients(t, r, "/api/clients")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

		w = listClients(t, r, "/api/clients")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

		var got []models.Client
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Acme", got[0].Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("StatusFiltersCacheSeparately", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 30*time.Second)

		mockRepo.On("List", mock.Anything, "active").Return(sample, nil).Once()
		mockRepo.On("List", mock.Anything, "archived").Return([]models.Client{}, nil).Once()

		w := listClients(t, r, "/api/clients?status=active")
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

		// A different filter is a different key, so this is a fresh miss.
		w = listClients(t, r, "/api/clients?status=archived")
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

		w = listClients(t, r, "/api/clients?status=active")
		assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExpiredEntryRefetches", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 20*time.Millisecond)

		mockRepo.On("List", mock.Anything, "").Return(sample, nil).Twice()

		w := listClients(t, r, "/api/clients")
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

		time.Sleep(30 * time.Millisecond)

		w = listClients(t, r, "/api/clients")
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryErrorIsNotCached", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 30*time.Second)

		mockRepo.On("List", mock.Anything, "").Return(nil, assert.AnError).Once()
		mockRepo.On("List", mock.Anything, "").Return(sample, nil).Once()

		w := listClients(t, r, "/api/clients")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		w = listClients(t, r, "/api/clients")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
		mockRepo.AssertExpectations(t)
	})
}

func TestMutationsInvalidateCache(t *testing.T) {
	sample := []models.Client{
		{ID: uuid.New(), Name: "Acme", Email: "acme@example.com", Status: "active"},
	}

	t.Run("CreateClearsListings", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 30*time.Second)

		mockRepo.On("List", mock.Anything, "").Return(sample, nil).Twice()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("models.Client")).Return(nil).Once()

		listClients(t, r, "/api/clients")

		body, _ := json.Marshal(map[string]string{"name": "Initech", "email": "init@example.com"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		// The cached listing was cleared by the write.
		w2 := listClients(t, r, "/api/clients")
		assert.Equal(t, "MISS", w2.Header().Get("X-Cache"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("DeleteClearsListings", func(t *testing.T) {
		mockRepo := new(MockRepository)
		h, r := newTestHandler(mockRepo, 30*time.Second)

		clientID := uuid.New()
		mockRepo.On("List", mock.Anything, "").Return(sample, nil).Once()
		mockRepo.On("Delete", mock.Anything, clientID).Return(nil).Once()

		listClients(t, r, "/api/clients")
		assert.Equal(t, 1, h.cache.Clients.Size())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/clients/"+clientID.String(), nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)

		assert.Equal(t, 0, h.cache.Clients.Size())
		mockRepo.AssertExpectations(t)
	})

	t.Run("DeleteMissingClientReturns404", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, r := newTestHandler(mockRepo, 30*time.Second)

		clientID := uuid.New()
		mockRepo.On("Delete", mock.Anything, clientID).Return(models.ErrNotFound).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/clients/"+clientID.String(), nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockRepository)
	manager := cache.NewManager(30*time.Second, zap.NewNop())
	h := NewHandler(mockRepo, manager, zap.NewNop())

	// No identity middleware on this router.
	r := gin.New()
	r.POST("/api/clients", h.Create)

	body, _ := json.Marshal(map[string]string{"name": "X", "email": "x@example.com"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockRepo.AssertNotCalled(t, "Create")
}
