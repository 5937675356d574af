package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthController_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns healthy when store is reachable", func(t *testing.T) {
		server := setupTestServer(t)

		w := server.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["store"])
		assert.NotEmpty(t, response.Time)
	})

	t.Run("returns unhealthy when ping fails", func(t *testing.T) {
		controller := NewHealthController(pingFunc(func(context.Context) error {
			return errors.New("connection refused")
		}), "1.0.0")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Equal(t, "unavailable", response.Checks["store"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("reports missing store", func(t *testing.T) {
		controller := NewHealthController(nil, "")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not configured", decode[HealthResponse](t, w).Checks["store"])
	})
}

func TestPing(t *testing.T) {
	server := setupTestServer(t)

	w := server.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode[map[string]string](t, w)["message"])
}
