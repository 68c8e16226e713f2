package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/domain/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockStoreRepository is a mock implementation of store.Repository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByConsumerKey(ctx context.Context, consumerKey string) (*store.Store, error) {
	args := m.Called(ctx, consumerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) Get(ctx context.Context, url string) (*store.Store, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) SaveOmsID(ctx context.Context, url, omsID string) error {
	args := m.Called(ctx, url, omsID)
	return args.Error(0)
}

func (m *MockStoreRepository) TouchLastOrderDate(ctx context.Context, url string, at time.Time) error {
	args := m.Called(ctx, url, at)
	return args.Error(0)
}

func authTestRouter(repo store.Repository) *gin.Engine {
	router := gin.New()
	router.Use(StoreAuth(repo, zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestStoreAuth(t *testing.T) {
	activeStore := &store.Store{
		URL:            "https://shop.example.com",
		ConsumerKey:    "ck_123",
		ConsumerSecret: "cs_456",
		Active:         true,
	}

	t.Run("valid credentials pass and attach the store", func(t *testing.T) {
		repo := new(MockStoreRepository)
		repo.On("FindByConsumerKey", mock.Anything, "ck_123").Return(activeStore, nil)

		router := gin.New()
		router.Use(StoreAuth(repo, zap.NewNop()))
		router.GET("/ping", func(c *gin.Context) {
			st := GetStore(c)
			if assert.NotNil(t, st) {
				assert.Equal(t, "https://shop.example.com", st.URL)
			}
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.SetBasicAuth("ck_123", "cs_456")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		repo := new(MockStoreRepository)
		repo.On("FindByConsumerKey", mock.Anything, "ck_123").Return(activeStore, nil)

		router := authTestRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.SetBasicAuth("ck_123", "wrong")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown consumer key is rejected", func(t *testing.T) {
		repo := new(MockStoreRepository)
		repo.On("FindByConsumerKey", mock.Anything, "ck_unknown").Return(nil, shared.ErrNotFound)

		router := authTestRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.SetBasicAuth("ck_unknown", "cs_456")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated store is rejected", func(t *testing.T) {
		inactive := *activeStore
		inactive.Active = false

		repo := new(MockStoreRepository)
		repo.On("FindByConsumerKey", mock.Anything, "ck_123").Return(&inactive, nil)

		router := authTestRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.SetBasicAuth("ck_123", "cs_456")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing credentials are rejected with a challenge", func(t *testing.T) {
		repo := new(MockStoreRepository)
		router := authTestRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
	})
}
