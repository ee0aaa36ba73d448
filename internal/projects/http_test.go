package projects_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-labs/webforge-backend/internal/auth"
	"github.com/webforge-labs/webforge-backend/internal/projects"
	"github.com/webforge-labs/webforge-backend/internal/users"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	api := r.Group("/api")
	api.Use(auth.WithUser(nil, users.NewMemory()))
	projects.Register(api.Group("/projects"), projects.NewMemory(), nil, false)
	return r
}

func do(r *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", user)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateRequiresName(t *testing.T) {
	r := newRouter(t)

	rr := do(r, http.MethodPost, "/api/projects", "u1", gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectLifecycle(t *testing.T) {
	r := newRouter(t)

	rr := do(r, http.MethodPost, "/api/projects", "u1", gin.H{"name": "Math Utils", "description": "numbers"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created projects.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Math Utils", created.Name)

	rr = do(r, http.MethodGet, "/api/projects", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []projects.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rr = do(r, http.MethodPut, "/api/projects/"+created.ID, "u1", gin.H{"name": "Math"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(r, http.MethodGet, "/api/projects/"+created.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got projects.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Math", got.Name)

	rr = do(r, http.MethodDelete, "/api/projects/"+created.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(r, http.MethodGet, "/api/projects/"+created.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjectForbiddenForOtherOwner(t *testing.T) {
	r := newRouter(t)

	rr := do(r, http.MethodPost, "/api/projects", "u1", gin.H{"name": "Private"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created projects.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/projects/"+created.ID, "u2", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPut, "/api/projects/"+created.ID, "u2", gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/projects/"+created.ID, "u2", nil).Code)

	// Unknown ids are 404, not 403.
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/projects/nope", "u2", nil).Code)
}

func TestUpdateWithNoFields(t *testing.T) {
	r := newRouter(t)

	rr := do(r, http.MethodPost, "/api/projects", "u1", gin.H{"name": "P"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created projects.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = do(r, http.MethodPut, "/api/projects/"+created.ID, "u1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
