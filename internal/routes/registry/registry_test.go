package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
	"github.com/webforge-labs/webforge-backend/internal/routes/registry"
	"github.com/webforge-labs/webforge-backend/internal/routes/repository"
	"github.com/webforge-labs/webforge-backend/internal/routes/sandbox"
)

const echoJS = `function endpoint_function(p) { return p; }`

func seedEndpoint(t *testing.T, store repository.Store, path string) domain.Endpoint {
	t.Helper()
	ep, err := store.CreateEndpoint(context.Background(), domain.Endpoint{
		Path:       path,
		Code:       echoJS,
		Language:   domain.LangJavaScript,
		HTTPMethod: "GET",
		ProjectID:  "pr1",
		OwnerID:    "u1",
	})
	require.NoError(t, err)
	return *ep
}

func TestEnsureInitializedHydrates(t *testing.T) {
	store := repository.NewMemory()
	seedEndpoint(t, store, "/api/demo/a")
	_, err := store.CreatePage(context.Background(), domain.Page{
		Path: "/demo/home", HTMLContent: "<h1>hi</h1>", ProjectID: "pr1", OwnerID: "u1",
	})
	require.NoError(t, err)

	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	assert.ElementsMatch(t, []string{"/api/demo/a", "/demo/home"}, reg.Paths())

	info := reg.Lookup("/api/demo/a")
	require.NotNil(t, info)
	assert.Equal(t, registry.KindEndpoint, info.Kind)
	require.NotNil(t, info.Handler)

	page := reg.Lookup("/demo/home")
	require.NotNil(t, page)
	assert.Equal(t, "<h1>hi</h1>", page.HTML)
}

func TestEnsureInitializedConcurrent(t *testing.T) {
	store := repository.NewMemory()
	seedEndpoint(t, store, "/api/demo/a")

	reg := registry.New(store, sandbox.NewHost(""))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.EnsureInitialized(context.Background()))
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Paths(), 1)
}

// failingStore forces one hydration failure, then behaves normally.
type failingStore struct {
	*repository.Memory
	mu    sync.Mutex
	fails int
}

func (f *failingStore) ListAllEndpoints(ctx context.Context) ([]domain.Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("store unavailable")
	}
	return f.Memory.ListAllEndpoints(ctx)
}

func TestEnsureInitializedRetriesAfterFailure(t *testing.T) {
	store := &failingStore{Memory: repository.NewMemory(), fails: 1}
	seedEndpoint(t, store.Memory, "/api/demo/a")

	reg := registry.New(store, sandbox.NewHost(""))

	err := reg.EnsureInitialized(context.Background())
	require.Error(t, err)

	// Failed hydration returns to uninitialized; the next call retries.
	require.NoError(t, reg.EnsureInitialized(context.Background()))
	assert.Len(t, reg.Paths(), 1)
}

func TestRegisterReplacesAndReleases(t *testing.T) {
	store := repository.NewMemory()
	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	ep := domain.Endpoint{
		Path: "/api/demo/a", Code: echoJS,
		Language: domain.LangJavaScript, HTTPMethod: "GET",
	}
	require.NoError(t, reg.RegisterEndpoint(context.Background(), ep))
	first := reg.Lookup("/api/demo/a").Handler

	ep.Code = `function endpoint_function(p) { return "v2"; }`
	require.NoError(t, reg.RegisterEndpoint(context.Background(), ep))

	// The replaced handler is released.
	_, err := first.Invoke(context.Background(), nil)
	require.Error(t, err)

	out, err := reg.Lookup("/api/demo/a").Handler.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
}

func TestRefreshEndpointFollowsStore(t *testing.T) {
	store := repository.NewMemory()
	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	ep := seedEndpoint(t, store, "/api/demo/a")
	require.NoError(t, reg.RefreshEndpoint(context.Background(), ep.Path))
	require.NotNil(t, reg.Lookup(ep.Path))

	// Refresh twice without intervening mutation is idempotent.
	require.NoError(t, reg.RefreshEndpoint(context.Background(), ep.Path))
	info := reg.Lookup(ep.Path)
	require.NotNil(t, info)
	assert.Equal(t, ep.Path, info.Path)
	assert.Equal(t, "GET", info.HTTPMethod)

	// Row gone: refresh removes the route and releases the handler.
	handler := info.Handler
	_, err := store.DeleteEndpoint(context.Background(), ep.ID, ep.OwnerID)
	require.NoError(t, err)
	require.NoError(t, reg.RefreshEndpoint(context.Background(), ep.Path))
	assert.Nil(t, reg.Lookup(ep.Path))

	_, err = handler.Invoke(context.Background(), nil)
	require.Error(t, err)
}

func TestReconcileConverges(t *testing.T) {
	store := repository.NewMemory()
	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	// Store changes the registry never saw.
	seedEndpoint(t, store, "/api/demo/a")
	_, err := store.CreatePage(context.Background(), domain.Page{
		Path: "/demo/home", HTMLContent: "<p>x</p>", ProjectID: "pr1", OwnerID: "u1",
	})
	require.NoError(t, err)

	// A route whose row is gone.
	reg.RegisterPage("/demo/stale", "<p>old</p>")

	require.NoError(t, reg.Reconcile(context.Background()))
	assert.ElementsMatch(t, []string{"/api/demo/a", "/demo/home"}, reg.Paths())
}

func TestUnregisterReleasesHandler(t *testing.T) {
	store := repository.NewMemory()
	reg := registry.New(store, sandbox.NewHost(""))
	require.NoError(t, reg.EnsureInitialized(context.Background()))

	require.NoError(t, reg.RegisterEndpoint(context.Background(), domain.Endpoint{
		Path: "/api/demo/a", Code: echoJS,
		Language: domain.LangJavaScript, HTTPMethod: "GET",
	}))
	handler := reg.Lookup("/api/demo/a").Handler

	reg.Unregister("/api/demo/a")
	assert.Nil(t, reg.Lookup("/api/demo/a"))

	_, err := handler.Invoke(context.Background(), nil)
	require.Error(t, err)
}
