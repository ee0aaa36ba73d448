// Package dispatch resolves every non-reserved request path against the
// route registry: stored pages are served verbatim, dynamic endpoints
// are invoked in the sandbox, everything else is a 404.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/sandbox"
	"github.com/webforge-labs/webforge-backend/internal/routes/stats"
)

type Dispatcher struct {
	reg     *registry.Registry
	store   repository.Store
	stats   *stats.Recorder
	timeout time.Duration
}

func New(reg *registry.Registry, store repository.Store, rec *stats.Recorder, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{reg: reg, store: store, stats: rec, timeout: timeout}
}

// CanonicalPath normalizes a request path into a registry key: leading
// slash, no trailing slash (except root), a doubled /api prefix
// collapsed.
func CanonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	if strings.HasPrefix(p, "/api/api/") {
		p = p[len("/api"):]
	}
	return p
}

// Handle is mounted as the router's NoRoute handler.
func (d *Dispatcher) Handle(c *gin.Context) {
	if err := d.reg.EnsureInitialized(c.Request.Context()); err != nil {
		log.Printf("dispatch: initialize registry: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	path := CanonicalPath(c.Request.URL.Path)

	if info := d.reg.Lookup(path); info != nil {
		switch {
		case info.Kind == registry.KindPage:
			d.servePage(c, info.HTML)
			return
		case info.Kind == registry.KindEndpoint && c.Request.Method == info.HTTPMethod:
			d.serveEndpoint(c, path, info)
			return
		}
	}

	// A page registered after this process hydrated may only exist in
	// the store; serve it and hydrate the registry on the way.
	if pg, err := d.store.PageByPath(c.Request.Context(), path); err == nil {
		d.reg.RegisterPage(pg.Path, pg.HTMLContent)
		d.servePage(c, pg.HTMLContent)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (d *Dispatcher) servePage(c *gin.Context, html string) {
	d.stats.RecordHit(c.Request.Context(), CanonicalPath(c.Request.URL.Path))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (d *Dispatcher) serveEndpoint(c *gin.Context, path string, info *registry.RouteInfo) {
	params, ok := d.buildParams(c, info)
	if !ok {
		return
	}

	d.stats.RecordHit(c.Request.Context(), path)

	// Detached from the request context: a client disconnect aborts
	// body reading but must not cancel a running handler. Only the
	// wall-clock budget does.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	result, err := info.Handler.Invoke(ctx, params)
	if err != nil {
		d.stats.RecordError(c.Request.Context(), path)
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Endpoint timed out"})
			return
		}
		var rerr *sandbox.RuntimeError
		msg := err.Error()
		if errors.As(err, &rerr) {
			msg = rerr.Message
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error executing endpoint",
			"details": msg,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (d *Dispatcher) buildParams(c *gin.Context, info *registry.RouteInfo) (map[string]any, bool) {
	params := make(map[string]any, len(info.Parameters))

	switch info.HTTPMethod {
	case http.MethodGet:
		// Declared names only; absent values stay null so the guest
		// sees every declared parameter.
		for _, name := range info.Parameters {
			if v, ok := c.GetQuery(name); ok {
				params[name] = v
			} else {
				params[name] = nil
			}
		}
	case http.MethodPost:
		if err := decodeJSONBody(c.Request.Body, &params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return nil, false
		}
	}

	return params, true
}

func decodeJSONBody(r io.Reader, into *map[string]any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return errors.New("body is not a JSON object")
	}
	*into = obj
	return nil
}
