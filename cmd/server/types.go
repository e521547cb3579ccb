package main

import (
	"codeberg.org/printableperks/server/internal/config"
	"codeberg.org/printableperks/server/internal/imagegen"
	"codeberg.org/printableperks/server/internal/quota"
	"codeberg.org/printableperks/server/perks/generations"
	"codeberg.org/printableperks/server/perks/subscriptions"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db               *pgxpool.Pool
	config           *config.Config
	redis            *redis.Client // nil when running without redis in development
	subscriptionRepo *subscriptions.Repository
	generationRepo   *generations.Repository
	services         *Services
	router           *gin.Engine
}

// holds the quota engine and external service clients
type Services struct {
	Engine *quota.Engine
	Images *imagegen.Client
}
