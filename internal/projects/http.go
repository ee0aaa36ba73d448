package projects

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/webforge-labs/webforge-backend/internal/auth"
)

// RouteCleaner removes a project's endpoints and pages (rows and live
// registrations) when the project is deleted with cascade enabled.
type RouteCleaner interface {
	RemoveProjectRoutes(ctx context.Context, projectID, ownerID string) error
}

type Handler struct {
	store   Store
	cleaner RouteCleaner
	cascade bool
}

func Register(rg *gin.RouterGroup, store Store, cleaner RouteCleaner, cascade bool) {
	h := &Handler{store: store, cleaner: cleaner, cascade: cascade}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	userID := auth.UserID(c)
	p, err := h.store.Create(c.Request.Context(), userID, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserID(c)
	items, err := h.store.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.store.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p.OwnerID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Name == nil && req.Description == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}

	userID := auth.UserID(c)
	id := c.Param("id")

	// Distinguish missing from not-owned for the status code.
	if p, err := h.store.ByID(c.Request.Context(), id); err == ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	} else if err == nil && p.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return
	}

	ok, err := h.store.Update(c.Request.Context(), id, userID, req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project updated"})
}

func (h *Handler) delete(c *gin.Context) {
	userID := auth.UserID(c)
	id := c.Param("id")

	p, err := h.store.ByID(c.Request.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return
	}

	if h.cascade && h.cleaner != nil {
		if err := h.cleaner.RemoveProjectRoutes(c.Request.Context(), id, userID); err != nil {
			log.Printf("projects: cascade delete %s: %v", id, err)
		}
	}

	ok, err := h.store.Delete(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
