// Package stats keeps per-route invocation counters in Redis for the
// debug surface. A nil client disables collection; every method is a
// no-op then.
package stats

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const (
	hitKeyPrefix   = "route:hits:"   // route:hits:{path}
	errorKeyPrefix = "route:errors:" // route:errors:{path}
)

type Recorder struct {
	client *redis.Client
}

func New(client *redis.Client) *Recorder {
	return &Recorder{client: client}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.client != nil
}

// RecordHit increments the invocation counter for path.
func (r *Recorder) RecordHit(ctx context.Context, path string) {
	if !r.Enabled() {
		return
	}
	if err := r.client.Incr(ctx, hitKeyPrefix+path).Err(); err != nil {
		log.Printf("stats: incr hit %s: %v", path, err)
	}
}

// RecordError increments the error counter for path.
func (r *Recorder) RecordError(ctx context.Context, path string) {
	if !r.Enabled() {
		return
	}
	if err := r.client.Incr(ctx, errorKeyPrefix+path).Err(); err != nil {
		log.Printf("stats: incr error %s: %v", path, err)
	}
}

// ForPath reads both counters for path; missing keys read as zero.
func (r *Recorder) ForPath(ctx context.Context, path string) (hits, errors int64) {
	if !r.Enabled() {
		return 0, 0
	}

	pipe := r.client.Pipeline()
	hitCmd := pipe.Get(ctx, hitKeyPrefix+path)
	errCmd := pipe.Get(ctx, errorKeyPrefix+path)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		log.Printf("stats: read %s: %v", path, err)
		return 0, 0
	}

	hits, _ = hitCmd.Int64()
	errors, _ = errCmd.Int64()
	return hits, errors
}

// Forget drops the counters for path (called when a route is deleted).
func (r *Recorder) Forget(ctx context.Context, path string) {
	if !r.Enabled() {
		return
	}
	if err := r.client.Del(ctx, hitKeyPrefix+path, errorKeyPrefix+path).Err(); err != nil {
		log.Printf("stats: forget %s: %v", path, err)
	}
}
