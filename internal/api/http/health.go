package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
)

// HealthResponse reports the pieces a route host can degrade on: the
// store connection and the in-memory registry. Routes counts dynamic
// registrations, not the static API surface.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Registry  string    `json:"registry"`
	Routes    int       `json:"routes"`
	Languages []string  `json:"languages"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	reg         *registry.Registry
}

func NewHealthHandler(serviceName, version string, db *pgxpool.Pool, reg *registry.Registry) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		reg:         reg,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "memory"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	// Cold just means no request has forced hydration yet; the first
	// dispatch will. Never hydrate from the health probe.
	regStatus := "cold"
	routes := 0
	if h.reg != nil && h.reg.Ready() {
		regStatus = "ready"
		routes = len(h.reg.Paths())
	}

	status := "healthy"
	if dbStatus == "down" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Registry:  regStatus,
		Routes:    routes,
		Languages: []string{"javascript", "python"},
	})
}

func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.HealthCheck)
}
