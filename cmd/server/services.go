package main

import (
	"codeberg.org/printableperks/server/internal/config"
	"codeberg.org/printableperks/server/internal/imagegen"
	"codeberg.org/printableperks/server/internal/quota"
	"codeberg.org/printableperks/server/perks/generations"
	"codeberg.org/printableperks/server/perks/subscriptions"
	"github.com/redis/go-redis/v9"
)

// creates the quota engine and the image generation client
func InitializeServices(
	cfg *config.Config,
	redisClient *redis.Client,
	subscriptionRepo *subscriptions.Repository,
	generationRepo *generations.Repository,
) *Services {
	var anonymous quota.AnonymousStore

	if redisClient != nil {
		anonymous = quota.NewRedisAnonymousStore(redisClient)
	} else {
		anonymous = quota.NewMemoryAnonymousStore()
	}

	engine := quota.NewEngine(anonymous, subscriptionRepo, generationRepo)
	images := imagegen.NewClient(cfg.RunwareAPIKey)

	return &Services{
		Engine: engine,
		Images: images,
	}
}
