package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webforge-labs/webforge-backend/config"
)

// OpenRedis connects the stats client. Returns nil (stats disabled)
// when no address is configured or the server is unreachable.
func OpenRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s: %v (stats disabled)", cfg.Addr, err)
		_ = client.Close()
		return nil
	}

	return client
}
