package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/webforge-labs/webforge-backend/internal/api/http"
	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/sandbox"
)

func TestHealthCheckColdRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := registry.New(repository.NewMemory(), sandbox.NewHost(""))
	router := gin.New()
	httpapi.NewHealthHandler("test-service", "1.0.0", nil, reg).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test-service", resp.Service)
	assert.Equal(t, "memory", resp.DB)
	assert.Equal(t, "cold", resp.Registry)
	assert.Zero(t, resp.Routes)
	assert.Contains(t, resp.Languages, "javascript")
}

func TestHealthCheckReportsRouteCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemory()
	_, err := store.CreateEndpoint(context.Background(), domain.Endpoint{
		Path: "/api/demo/a", Code: "function endpoint_function(p){return 1;}",
		Language: domain.LangJavaScript, HTTPMethod: "GET", OwnerID: "u1",
	})
	require.NoError(t, err)

	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	router := gin.New()
	httpapi.NewHealthHandler("test-service", "1.0.0", nil, reg).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Registry)
	assert.Equal(t, 1, resp.Routes)
}
