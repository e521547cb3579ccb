// Package ratelimit provides per-IP request limiting for the generation
// endpoint. This is abuse resistance in front of the quota engine, not a
// replacement for it: the quota engine enforces the product limits, this
// keeps a single client from hammering the vendor connection.
package ratelimit

import (
	"codeberg.org/printableperks/server/internal/errors"
	"codeberg.org/printableperks/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// requests per client IP on the generation endpoint
const generateRateFormat = "30-M"

// returns a gin middleware limiting requests per client IP. Counters live
// in redis when a client is supplied so limits hold across replicas; the
// in-memory store is the fallback for redis-less development.
func GenerateMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	limit, err := limiter.NewRateFromFormatted(generateRateFormat)
	if err != nil {
		logger.FatalErr(err, "invalid rate format", "format", generateRateFormat)
	}

	var store limiter.Store

	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "ratelimit:generate",
		})

		if err != nil {
			logger.ErrorErr(err, "failed to create redis rate limit store, using memory")
			store = nil
		}
	}

	if store == nil {
		store = memory.NewStore()
	}

	return mgin.NewMiddleware(
		limiter.New(store, limit),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "too many generation requests, slow down")
		}),
	)
}
