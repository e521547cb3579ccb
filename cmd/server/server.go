package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/printableperks/server/internal/config"
	"codeberg.org/printableperks/server/internal/logger"
	"codeberg.org/printableperks/server/perks/generations"
	"codeberg.org/printableperks/server/perks/subscriptions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.SupabaseConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// configure connection pool for supabase free tier pooler compatibility
	// free tier has ~10-15 pooler connections, so keep our pool small
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// CRITICAL: use simple protocol for supabase pooler (PgBouncer) compatibility
	// pgBouncer in transaction mode doesn't support prepared statements,
	// which causes connections to hang on subsequent queries
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	subscriptionRepo := subscriptions.NewRepository(db)
	generationRepo := generations.NewRepository(db)

	// redis backs the anonymous quota counters and the per-IP rate limiter;
	// without it both fall back to in-process stores
	redisClient, err := connectRedis(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	services := InitializeServices(cfg, redisClient, subscriptionRepo, generationRepo)

	router := gin.Default()

	server := &Server{
		db:               db,
		config:           cfg,
		redis:            redisClient,
		subscriptionRepo: subscriptionRepo,
		generationRepo:   generationRepo,
		services:         services,
		router:           router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// connects to redis when a URL is configured. Development runs without one;
// config already rejects a missing URL in production.
func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, anonymous quota counters will not survive restarts")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
