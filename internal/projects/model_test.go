package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "math-utils", Slug("Math Utils"))
	assert.Equal(t, "hello-world", Slug("  Hello   World "))
	assert.Equal(t, "x", Slug("X"))
	assert.Equal(t, "", Slug("   "))
}

func TestMemoryStoreOwnerScoping(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.Create(ctx, "u1", "Math Utils", "numbers")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, "math-utils", p.Slug())

	// Another owner cannot touch it.
	name := "stolen"
	ok, err := m.Update(ctx, p.ID, "u2", &name, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Delete(ctx, p.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	// The owner can.
	ok, err = m.Delete(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.ByID(ctx, p.ID)
	assert.Equal(t, ErrNotFound, err)
}
