package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webforge-labs/webforge-backend/config"
	"github.com/webforge-labs/webforge-backend/internal/auth"
	"github.com/webforge-labs/webforge-backend/internal/bootstrap"
	"github.com/webforge-labs/webforge-backend/internal/routes/reconcile"
	"github.com/webforge-labs/webforge-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.Database.DSN != "" {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("db: %v", err)
		}
	} else {
		log.Println("DB_DSN not set, using in-memory store")
	}

	rdb := bootstrap.OpenRedis(cfg.Redis)

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	// Release mode silences gin's per-route debug dump; dynamic routes
	// never appear in it anyway, they all go through NoRoute.
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, reg := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:      "webforge-backend",
		Version:          cfg.App.Version,
		DB:               pool,
		Redis:            rdb,
		AuthClient:       authClient,
		AdminUID:         cfg.App.AdminUserID,
		CascadeOnDelete:  cfg.App.CascadeOnDelete,
		GeneratorBaseURL: cfg.App.GeneratorBaseURL,
		SandboxTimeout:   cfg.Sandbox.Timeout,
		PythonBin:        cfg.Sandbox.PythonBin,
		RateLimitRPS:     cfg.Server.RateLimitRPS,
	})

	sched := reconcile.NewScheduler(reg)
	if err := sched.Start("@every 5m"); err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	defer sched.Stop()

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
