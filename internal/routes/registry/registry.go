// Package registry holds the in-memory path -> RouteInfo mapping the
// dispatcher reads on every request. Mutations serialize on a writer
// mutex; lookups only ever observe fully-built RouteInfo values.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/sandbox"
)

type Kind string

const (
	KindEndpoint Kind = "endpoint"
	KindPage     Kind = "page"
)

// RouteInfo is the registry's record for one path: either an endpoint
// with a compiled handler, or a page body.
type RouteInfo struct {
	Kind       Kind
	Path       string
	Parameters []string
	HTTPMethod string
	Language   domain.Language
	Handler    *sandbox.Unit
	HTML       string
}

type Registry struct {
	store repository.Store
	host  *sandbox.Host

	mu     sync.RWMutex
	routes map[string]*RouteInfo

	// writeMu serializes register/refresh/unregister/reconcile against
	// each other; lookups stay concurrent.
	writeMu sync.Mutex

	initMu       sync.Mutex
	ready        bool
	initializing chan struct{}
	initErr      error
}

func New(store repository.Store, host *sandbox.Host) *Registry {
	return &Registry{
		store:  store,
		host:   host,
		routes: make(map[string]*RouteInfo),
	}
}

// EnsureInitialized hydrates the registry from the store on first call.
// Concurrent callers during hydration wait for the same completion; a
// failed hydration leaves the registry uninitialized so the next call
// retries.
func (r *Registry) EnsureInitialized(ctx context.Context) error {
	r.initMu.Lock()
	if r.ready {
		r.initMu.Unlock()
		return nil
	}
	if ch := r.initializing; ch != nil {
		r.initMu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		r.initMu.Lock()
		defer r.initMu.Unlock()
		if r.ready {
			return nil
		}
		return r.initErr
	}

	ch := make(chan struct{})
	r.initializing = ch
	r.initMu.Unlock()

	err := r.hydrate(ctx)

	r.initMu.Lock()
	r.initializing = nil
	r.initErr = err
	if err == nil {
		r.ready = true
	}
	r.initMu.Unlock()
	close(ch)
	return err
}

func (r *Registry) hydrate(ctx context.Context) error {
	endpoints, err := r.store.ListAllEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("list endpoints: %w", err)
	}
	pages, err := r.store.ListAllPages(ctx)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	for _, ep := range endpoints {
		r.swap(ep.Path, r.buildEndpoint(ctx, ep))
	}
	for _, p := range pages {
		r.swap(p.Path, &RouteInfo{Kind: KindPage, Path: p.Path, HTML: p.HTMLContent})
	}
	log.Printf("registry: loaded %d endpoints, %d pages", len(endpoints), len(pages))
	return nil
}

func (r *Registry) buildEndpoint(ctx context.Context, ep domain.Endpoint) *RouteInfo {
	unit, err := r.host.Compile(ctx, ep.Language, ep.Code)
	if err != nil {
		// The unit is a stub that reports the error over HTTP.
		log.Printf("registry: compile %s: %v", ep.Path, err)
	}
	return &RouteInfo{
		Kind:       KindEndpoint,
		Path:       ep.Path,
		Parameters: append([]string(nil), ep.Parameters...),
		HTTPMethod: ep.HTTPMethod,
		Language:   ep.Language,
		Handler:    unit,
	}
}

// swap atomically installs (or removes, for nil) the RouteInfo at path
// and releases the handler it replaced. Caller holds writeMu.
func (r *Registry) swap(path string, info *RouteInfo) {
	r.mu.Lock()
	old := r.routes[path]
	if info == nil {
		delete(r.routes, path)
	} else {
		r.routes[path] = info
	}
	r.mu.Unlock()

	// Release after the swap so readers never see a released handler
	// through the map; refcounting covers calls already in flight.
	if old != nil && old.Handler != nil {
		old.Handler.Release()
	}
}

// RegisterEndpoint compiles and installs an endpoint route. The returned
// error, if any, is the compile error; the route is registered either
// way (as a stub on failure).
func (r *Registry) RegisterEndpoint(ctx context.Context, ep domain.Endpoint) error {
	unit, cerr := r.host.Compile(ctx, ep.Language, ep.Code)
	info := &RouteInfo{
		Kind:       KindEndpoint,
		Path:       ep.Path,
		Parameters: append([]string(nil), ep.Parameters...),
		HTTPMethod: ep.HTTPMethod,
		Language:   ep.Language,
		Handler:    unit,
	}

	r.writeMu.Lock()
	r.swap(ep.Path, info)
	r.writeMu.Unlock()
	return cerr
}

// RegisterPage installs or replaces a page route.
func (r *Registry) RegisterPage(path, html string) {
	r.writeMu.Lock()
	r.swap(path, &RouteInfo{Kind: KindPage, Path: path, HTML: html})
	r.writeMu.Unlock()
}

// RefreshEndpoint re-reads the store by path: re-registers when the row
// exists, removes the route when it is gone.
func (r *Registry) RefreshEndpoint(ctx context.Context, path string) error {
	ep, err := r.store.EndpointByPath(ctx, path)
	if err != nil {
		if err == domain.ErrNotFound {
			r.Unregister(path)
			return nil
		}
		return err
	}
	return r.RegisterEndpoint(ctx, *ep)
}

// RefreshPage mirrors RefreshEndpoint for pages.
func (r *Registry) RefreshPage(ctx context.Context, path string) error {
	p, err := r.store.PageByPath(ctx, path)
	if err != nil {
		if err == domain.ErrNotFound {
			r.Unregister(path)
			return nil
		}
		return err
	}
	r.RegisterPage(p.Path, p.HTMLContent)
	return nil
}

// Unregister removes the route at path and releases its handler.
func (r *Registry) Unregister(path string) {
	r.writeMu.Lock()
	r.swap(path, nil)
	r.writeMu.Unlock()
}

// Ready reports whether the initial hydration has completed. Used by
// the health surface; it never triggers hydration itself.
func (r *Registry) Ready() bool {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	return r.ready
}

// Lookup returns the route installed at path, or nil.
func (r *Registry) Lookup(path string) *RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes[path]
}

// Paths returns every registered path.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	return out
}

// Reconcile brings the registry back in line with the store: routes
// missing from memory are registered, routes with no backing row are
// removed. Existing routes are left untouched; Refresh* handles
// content changes.
func (r *Registry) Reconcile(ctx context.Context) error {
	endpoints, err := r.store.ListAllEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("list endpoints: %w", err)
	}
	pages, err := r.store.ListAllPages(ctx)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	want := make(map[string]bool, len(endpoints)+len(pages))
	for _, ep := range endpoints {
		want[ep.Path] = true
	}
	for _, p := range pages {
		want[p.Path] = true
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	stale := make([]string, 0, 4)
	for path := range r.routes {
		if !want[path] {
			stale = append(stale, path)
		}
	}
	r.mu.RUnlock()

	added := 0
	for _, ep := range endpoints {
		if r.Lookup(ep.Path) == nil {
			r.swap(ep.Path, r.buildEndpoint(ctx, ep))
			added++
		}
	}
	for _, p := range pages {
		if r.Lookup(p.Path) == nil {
			r.swap(p.Path, &RouteInfo{Kind: KindPage, Path: p.Path, HTML: p.HTMLContent})
			added++
		}
	}
	for _, path := range stale {
		r.swap(path, nil)
	}

	if added > 0 || len(stale) > 0 {
		log.Printf("registry: reconcile added %d, removed %d", added, len(stale))
	}
	return nil
}
