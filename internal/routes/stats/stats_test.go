package stats_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webforge-labs/webforge-backend/internal/routes/stats"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRecorderCounts(t *testing.T) {
	ctx := context.Background()
	rec := stats.New(setupTestRedis(t))

	rec.RecordHit(ctx, "/api/demo/a")
	rec.RecordHit(ctx, "/api/demo/a")
	rec.RecordError(ctx, "/api/demo/a")

	hits, errs := rec.ForPath(ctx, "/api/demo/a")
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), errs)

	// Unknown paths read as zero.
	hits, errs = rec.ForPath(ctx, "/api/demo/missing")
	assert.Zero(t, hits)
	assert.Zero(t, errs)
}

func TestRecorderForget(t *testing.T) {
	ctx := context.Background()
	rec := stats.New(setupTestRedis(t))

	rec.RecordHit(ctx, "/api/demo/a")
	rec.Forget(ctx, "/api/demo/a")

	hits, errs := rec.ForPath(ctx, "/api/demo/a")
	assert.Zero(t, hits)
	assert.Zero(t, errs)
}

func TestRecorderDisabled(t *testing.T) {
	ctx := context.Background()
	rec := stats.New(nil)

	assert.False(t, rec.Enabled())
	rec.RecordHit(ctx, "/api/demo/a")
	hits, errs := rec.ForPath(ctx, "/api/demo/a")
	assert.Zero(t, hits)
	assert.Zero(t, errs)
}
