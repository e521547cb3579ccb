package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
	"codeberg.org/printableperks/server/internal/logger"
	"github.com/redis/go-redis/v9"
)

const keyAnonymousCount = "quota:anon:%s:%s"

// counters expire well after their day has passed; the day is part of the
// key, so an expired or missing key simply reads as zero usage
const anonymousCountTTL = 48 * time.Hour

// implements AnonymousStore using Redis. The count for each device is kept
// under a day-suffixed key, so stale days age out without an explicit
// reset and increments are atomic via INCR.
type RedisAnonymousStore struct {
	client *redis.Client
}

// creates a new Redis-backed anonymous quota store
func NewRedisAnonymousStore(client *redis.Client) *RedisAnonymousStore {
	return &RedisAnonymousStore{client: client}
}

// creates a new Redis-backed anonymous quota store from a URL
func NewRedisAnonymousStoreFromURL(redisURL string) (*RedisAnonymousStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisAnonymousStore{client: client}, nil
}

// returns the recorded count for the device on the given day
func (s *RedisAnonymousStore) Count(ctx context.Context, deviceKey string, day datekey.DayKey) (int, error) {
	key := fmt.Sprintf(keyAnonymousCount, deviceKey, day)

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read anonymous count: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		// corrupt record: treat as no usage yet and reset
		logger.Warn("corrupt anonymous quota record, resetting",
			"device_key", deviceKey,
			"value", val,
		)

		if err := s.client.Del(ctx, key).Err(); err != nil {
			logger.ErrorErr(err, "failed to reset corrupt anonymous quota record")
		}

		return 0, nil
	}

	return count, nil
}

// adds one generation for the device on the given day
func (s *RedisAnonymousStore) Increment(ctx context.Context, deviceKey string, day datekey.DayKey) (int, error) {
	key := fmt.Sprintf(keyAnonymousCount, deviceKey, day)

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, anonymousCountTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment anonymous count: %w", err)
	}

	return int(incr.Val()), nil
}
