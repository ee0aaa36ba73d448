package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

func TestMemoryPathUniqueness(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/y", Code: "c", OwnerID: "u1"})
	require.NoError(t, err)

	_, err = m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/y", Code: "c", OwnerID: "u2"})
	assert.Equal(t, domain.ErrPathConflict, err)

	// Pages have their own namespace.
	_, err = m.CreatePage(ctx, domain.Page{Path: "/x/y", HTMLContent: "<p>x</p>", OwnerID: "u1"})
	require.NoError(t, err)
	_, err = m.CreatePage(ctx, domain.Page{Path: "/x/y", HTMLContent: "<p>y</p>", OwnerID: "u1"})
	assert.Equal(t, domain.ErrPathConflict, err)
}

func TestMemoryUpdateIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ep, err := m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/y", Code: "v1", OwnerID: "u1"})
	require.NoError(t, err)

	code := "v2"
	ok, err := m.UpdateEndpoint(ctx, ep.ID, "u2", domain.EndpointUpdate{Code: &code})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.UpdateEndpoint(ctx, ep.ID, "u1", domain.EndpointUpdate{Code: &code})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := m.EndpointByID(ctx, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Code)
}

func TestMemoryUpdatePathConflicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/a", Code: "c", OwnerID: "u1"})
	require.NoError(t, err)
	ep, err := m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/b", Code: "c", OwnerID: "u1"})
	require.NoError(t, err)

	taken := "/api/x/a"
	_, err = m.UpdateEndpoint(ctx, ep.ID, "u1", domain.EndpointUpdate{Path: &taken})
	assert.Equal(t, domain.ErrPathConflict, err)
}

func TestSplitParameters(t *testing.T) {
	assert.Nil(t, splitParameters(""))
	assert.Equal(t, []string{"a"}, splitParameters("a"))
	assert.Equal(t, []string{"a", "b"}, splitParameters("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitParameters("a,,b"))
	assert.Equal(t, "a,b", joinParameters([]string{"a", "b"}))
}

func TestMemoryListByProject(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/a", Code: "c", ProjectID: "pr1", OwnerID: "u1"})
	require.NoError(t, err)
	_, err = m.CreateEndpoint(ctx, domain.Endpoint{Path: "/api/x/b", Code: "c", ProjectID: "pr2", OwnerID: "u1"})
	require.NoError(t, err)

	got, err := m.ListEndpointsByProject(ctx, "pr1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/api/x/a", got[0].Path)
}
