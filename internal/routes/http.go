// Package routes is the CRUD surface through which the registry's
// contents change. Every mutation writes the store first, then updates
// the registry; a registry failure is logged and reported as success,
// the periodic reconcile converges it later.
package routes

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/webforge-labs/webforge-backend/internal/auth"
	"github.com/webforge-labs/webforge-backend/internal/projects"
	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/stats"
)

type Handler struct {
	store    repository.Store
	projects projects.Store
	reg      *registry.Registry
	stats    *stats.Recorder
}

func NewHandler(store repository.Store, projectStore projects.Store, reg *registry.Registry, rec *stats.Recorder) *Handler {
	return &Handler{store: store, projects: projectStore, reg: reg, stats: rec}
}

func (h *Handler) RegisterEndpointRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.createEndpoint)
	rg.GET("", h.listEndpoints)
	rg.GET("/:id", h.getEndpoint)
	rg.PUT("/:id", h.updateEndpoint)
	rg.DELETE("/:id", h.deleteEndpoint)
}

func (h *Handler) RegisterPageRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.createPage)
	rg.GET("", h.listPages)
	rg.GET("/:id", h.getPage)
	rg.PUT("/:id", h.updatePage)
	rg.DELETE("/:id", h.deletePage)
}

func (h *Handler) RegisterDebugRoutes(rg *gin.RouterGroup) {
	rg.GET("/routes", h.debugRoutes)
}

// ownedProject loads the target project and enforces ownership,
// answering 404/403 itself. Returns nil when the request is done.
func (h *Handler) ownedProject(c *gin.Context, projectID string) *projects.Project {
	p, err := h.projects.ByID(c.Request.Context(), projectID)
	if err != nil {
		if err == projects.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	if p.OwnerID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return nil
	}
	return p
}

func validMethod(m string) bool   { return m == http.MethodGet || m == http.MethodPost }
func validLanguage(l domain.Language) bool { return l.Valid() }

type createEndpointReq struct {
	Path       string   `json:"path"`
	Code       string   `json:"code"`
	Parameters []string `json:"parameters"`
	HTTPMethod string   `json:"httpMethod"`
	Language   string   `json:"language"`
	ProjectID  string   `json:"projectId"`
}

func (h *Handler) createEndpoint(c *gin.Context) {
	var req createEndpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Path) == "" || req.Code == "" || req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path, code and projectId are required"})
		return
	}

	method := strings.ToUpper(req.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "httpMethod must be GET or POST"})
		return
	}

	lang := domain.Language(strings.ToLower(req.Language))
	if lang == "" {
		lang = domain.LangJavaScript
	}
	if !validLanguage(lang) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language must be javascript or python"})
		return
	}

	p := h.ownedProject(c, req.ProjectID)
	if p == nil {
		return
	}

	fullPath, err := ComposeEndpointPath(p.Slug(), req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reg.EnsureInitialized(c.Request.Context()); err != nil {
		log.Printf("routes: ensure initialized: %v", err)
	}

	ep, err := h.store.CreateEndpoint(c.Request.Context(), domain.Endpoint{
		Path:       fullPath,
		Parameters: req.Parameters,
		Code:       req.Code,
		Language:   lang,
		HTTPMethod: method,
		ProjectID:  p.ID,
		OwnerID:    auth.UserID(c),
	})
	if err != nil {
		if err == domain.ErrPathConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "path already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// DB first, registry second: a crash between the two loses only
	// in-memory state that the next hydration rebuilds.
	if err := h.reg.RegisterEndpoint(c.Request.Context(), *ep); err != nil {
		log.Printf("routes: register %s: %v", ep.Path, err)
	}

	c.JSON(http.StatusCreated, ep)
}

func (h *Handler) listEndpoints(c *gin.Context) {
	items, err := h.store.ListEndpointsByOwner(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ownedEndpoint answers 404/403 itself; returns nil when done.
func (h *Handler) ownedEndpoint(c *gin.Context) *domain.Endpoint {
	ep, err := h.store.EndpointByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	if ep.OwnerID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return nil
	}
	return ep
}

func (h *Handler) getEndpoint(c *gin.Context) {
	if ep := h.ownedEndpoint(c); ep != nil {
		c.JSON(http.StatusOK, ep)
	}
}

type updateEndpointReq struct {
	Path       *string   `json:"path"`
	Code       *string   `json:"code"`
	Parameters *[]string `json:"parameters"`
	HTTPMethod *string   `json:"httpMethod"`
	Language   *string   `json:"language"`
}

func (h *Handler) updateEndpoint(c *gin.Context) {
	var req updateEndpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Path == nil && req.Code == nil && req.Parameters == nil &&
		req.HTTPMethod == nil && req.Language == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	ep := h.ownedEndpoint(c)
	if ep == nil {
		return
	}

	var u domain.EndpointUpdate
	if req.Path != nil {
		newPath, err := h.composeUpdatedEndpointPath(c, ep, *req.Path)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u.Path = &newPath
	}
	u.Code = req.Code
	u.Parameters = req.Parameters
	if req.HTTPMethod != nil {
		m := strings.ToUpper(*req.HTTPMethod)
		if !validMethod(m) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "httpMethod must be GET or POST"})
			return
		}
		u.HTTPMethod = &m
	}
	if req.Language != nil {
		l := domain.Language(strings.ToLower(*req.Language))
		if !validLanguage(l) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "language must be javascript or python"})
			return
		}
		u.Language = &l
	}

	ok, err := h.store.UpdateEndpoint(c.Request.Context(), ep.ID, auth.UserID(c), u)
	if err != nil {
		if err == domain.ErrPathConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "path already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}

	if u.Path != nil && *u.Path != ep.Path {
		// Path migration: drop the old key, install at the new one.
		h.reg.Unregister(ep.Path)
		h.stats.Forget(c.Request.Context(), ep.Path)
		if err := h.reg.RefreshEndpoint(c.Request.Context(), *u.Path); err != nil {
			log.Printf("routes: refresh %s: %v", *u.Path, err)
		}
	} else if err := h.reg.RefreshEndpoint(c.Request.Context(), ep.Path); err != nil {
		log.Printf("routes: refresh %s: %v", ep.Path, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "endpoint updated"})
}

// composeUpdatedEndpointPath rebuilds the full path for a path update.
// When the owning project is gone (cascade disabled), the new path is
// accepted as-is if already anchored under /api/.
func (h *Handler) composeUpdatedEndpointPath(c *gin.Context, ep *domain.Endpoint, userPath string) (string, error) {
	p, err := h.projects.ByID(c.Request.Context(), ep.ProjectID)
	if err == nil {
		return ComposeEndpointPath(p.Slug(), userPath)
	}

	n := NormalizePath(userPath)
	if !strings.HasPrefix(n, "/api/") {
		return "", projects.ErrNotFound
	}
	return n, nil
}

func (h *Handler) deleteEndpoint(c *gin.Context) {
	ep := h.ownedEndpoint(c)
	if ep == nil {
		return
	}

	if _, err := h.store.DeleteEndpoint(c.Request.Context(), ep.ID, auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reg.Unregister(ep.Path)
	h.stats.Forget(c.Request.Context(), ep.Path)

	c.JSON(http.StatusOK, gin.H{"message": "endpoint deleted"})
}

type createPageReq struct {
	Path        string `json:"path"`
	HTMLContent string `json:"htmlContent"`
	ProjectID   string `json:"projectId"`
}

func (h *Handler) createPage(c *gin.Context) {
	var req createPageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Path) == "" || req.HTMLContent == "" || req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path, htmlContent and projectId are required"})
		return
	}

	p := h.ownedProject(c, req.ProjectID)
	if p == nil {
		return
	}

	fullPath, err := ComposePagePath(p.Slug(), req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reg.EnsureInitialized(c.Request.Context()); err != nil {
		log.Printf("routes: ensure initialized: %v", err)
	}

	pg, err := h.store.CreatePage(c.Request.Context(), domain.Page{
		Path:        fullPath,
		HTMLContent: req.HTMLContent,
		ProjectID:   p.ID,
		OwnerID:     auth.UserID(c),
	})
	if err != nil {
		if err == domain.ErrPathConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "path already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reg.RegisterPage(pg.Path, pg.HTMLContent)

	c.JSON(http.StatusCreated, pg)
}

func (h *Handler) listPages(c *gin.Context) {
	items, err := h.store.ListPagesByOwner(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ownedPage(c *gin.Context) *domain.Page {
	pg, err := h.store.PageByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	if pg.OwnerID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return nil
	}
	return pg
}

func (h *Handler) getPage(c *gin.Context) {
	if pg := h.ownedPage(c); pg != nil {
		c.JSON(http.StatusOK, pg)
	}
}

type updatePageReq struct {
	Path        *string `json:"path"`
	HTMLContent *string `json:"htmlContent"`
}

func (h *Handler) updatePage(c *gin.Context) {
	var req updatePageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Path == nil && req.HTMLContent == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	pg := h.ownedPage(c)
	if pg == nil {
		return
	}

	var u domain.PageUpdate
	if req.Path != nil {
		p, err := h.projects.ByID(c.Request.Context(), pg.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project not found"})
			return
		}
		newPath, err := ComposePagePath(p.Slug(), *req.Path)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u.Path = &newPath
	}
	u.HTMLContent = req.HTMLContent

	ok, err := h.store.UpdatePage(c.Request.Context(), pg.ID, auth.UserID(c), u)
	if err != nil {
		if err == domain.ErrPathConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "path already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	if u.Path != nil && *u.Path != pg.Path {
		h.reg.Unregister(pg.Path)
		h.stats.Forget(c.Request.Context(), pg.Path)
		if err := h.reg.RefreshPage(c.Request.Context(), *u.Path); err != nil {
			log.Printf("routes: refresh page %s: %v", *u.Path, err)
		}
	} else if err := h.reg.RefreshPage(c.Request.Context(), pg.Path); err != nil {
		log.Printf("routes: refresh page %s: %v", pg.Path, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "page updated"})
}

func (h *Handler) deletePage(c *gin.Context) {
	pg := h.ownedPage(c)
	if pg == nil {
		return
	}

	if _, err := h.store.DeletePage(c.Request.Context(), pg.ID, auth.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.reg.Unregister(pg.Path)
	h.stats.Forget(c.Request.Context(), pg.Path)

	c.JSON(http.StatusOK, gin.H{"message": "page deleted"})
}

type debugRoute struct {
	Path       string   `json:"path"`
	Type       string   `json:"type"`
	HTTPMethod string   `json:"httpMethod,omitempty"`
	Language   string   `json:"language,omitempty"`
	Parameters []string `json:"parameters,omitempty"`
	Hits       int64    `json:"hits"`
	Errors     int64    `json:"errors"`
}

func (h *Handler) debugRoutes(c *gin.Context) {
	if err := h.reg.EnsureInitialized(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	paths := h.reg.Paths()
	out := make([]debugRoute, 0, len(paths))
	for _, path := range paths {
		info := h.reg.Lookup(path)
		if info == nil {
			continue
		}
		hits, errs := h.stats.ForPath(c.Request.Context(), path)
		r := debugRoute{Path: path, Type: string(info.Kind), Hits: hits, Errors: errs}
		if info.Kind == registry.KindEndpoint {
			r.HTTPMethod = info.HTTPMethod
			r.Language = string(info.Language)
			r.Parameters = info.Parameters
		}
		out = append(out, r)
	}

	c.JSON(http.StatusOK, gin.H{"routes": out, "count": len(out)})
}

// RemoveProjectRoutes deletes every endpoint and page of a project,
// rows and registrations both. Used by the cascade on project delete.
func (h *Handler) RemoveProjectRoutes(ctx context.Context, projectID, ownerID string) error {
	endpoints, err := h.store.ListEndpointsByProject(ctx, projectID)
	if err != nil {
		return err
	}
	pages, err := h.store.ListPagesByProject(ctx, projectID)
	if err != nil {
		return err
	}

	for _, ep := range endpoints {
		if _, err := h.store.DeleteEndpoint(ctx, ep.ID, ownerID); err != nil {
			log.Printf("routes: cascade delete endpoint %s: %v", ep.Path, err)
			continue
		}
		h.reg.Unregister(ep.Path)
		h.stats.Forget(ctx, ep.Path)
	}
	for _, pg := range pages {
		if _, err := h.store.DeletePage(ctx, pg.ID, ownerID); err != nil {
			log.Printf("routes: cascade delete page %s: %v", pg.Path, err)
			continue
		}
		h.reg.Unregister(pg.Path)
		h.stats.Forget(ctx, pg.Path)
	}
	return nil
}
