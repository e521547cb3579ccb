package quota

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
	"codeberg.org/printableperks/server/internal/logger"
)

// Engine is the single entry point for quota decisions. It dispatches to
// the anonymous counter or the subscription-aware registered path based on
// caller identity, and every failure resolves to the conservative outcome
// rather than an error surfaced to the UI.
type Engine struct {
	anonymous     AnonymousStore
	subscriptions SubscriptionResolver
	stats         StatsStore
}

// creates a quota engine over the given stores
func NewEngine(anonymous AnonymousStore, subscriptions SubscriptionResolver, stats StatsStore) *Engine {
	return &Engine{
		anonymous:     anonymous,
		subscriptions: subscriptions,
		stats:         stats,
	}
}

// reports whether the caller may start a generation right now.
// Lookup failures read as unavailable, never as an error.
func (e *Engine) CheckAvailability(ctx context.Context, caller Caller) bool {
	now := time.Now()

	switch caller.Kind {
	case CallerAnonymous:
		count, err := e.anonymous.Count(ctx, caller.DeviceKey, datekey.DayOf(now))
		if err != nil {
			logger.ErrorErr(err, "anonymous quota lookup failed, treating as unavailable",
				"device_key", caller.DeviceKey,
			)
			return false
		}

		return count < DailyLimitAnonymous

	case CallerRegistered:
		ent := e.resolveEntitlement(ctx, caller.UserID)

		if ent.Paid {
			usage, err := e.stats.MonthlyUsage(ctx, caller.UserID, datekey.StartOfMonth(now))
			if err != nil {
				logger.ErrorErr(err, "monthly usage lookup failed, treating as unavailable",
					"user_id", caller.UserID,
				)
				return false
			}

			return usage < ent.MonthlyLimit
		}

		latest, err := e.stats.Latest(ctx, caller.UserID)
		if err != nil {
			logger.ErrorErr(err, "usage lookup failed, treating as unavailable",
				"user_id", caller.UserID,
			)
			return false
		}

		if latest == nil || !datekey.SameDay(latest.CreatedAt, now) {
			return true
		}

		return latest.DailyCount < DailyLimitRegisteredFree

	default:
		logger.Error("unknown caller kind, treating as unavailable", "kind", caller.Kind)
		return false
	}
}

// durably records one completed generation for the caller. Call this only
// after the image was actually delivered; failures are returned for
// logging but the generation is never rolled back.
func (e *Engine) RecordGeneration(ctx context.Context, caller Caller) error {
	now := time.Now()

	switch caller.Kind {
	case CallerAnonymous:
		if _, err := e.anonymous.Increment(ctx, caller.DeviceKey, datekey.DayOf(now)); err != nil {
			return fmt.Errorf("failed to record anonymous generation: %w", err)
		}

		return nil

	case CallerRegistered:
		if err := e.stats.Record(ctx, caller.UserID, now); err != nil {
			return fmt.Errorf("failed to record generation for user %s: %w", caller.UserID, err)
		}

		return nil

	default:
		return fmt.Errorf("unknown caller kind %d", caller.Kind)
	}
}

// assembles the full stats object for the caller. Lookup failures resolve
// to zero remaining, never to an error.
func (e *Engine) GetStats(ctx context.Context, caller Caller) UserGenerationStats {
	now := time.Now()

	switch caller.Kind {
	case CallerAnonymous:
		return e.anonymousStats(ctx, caller.DeviceKey, now)
	case CallerRegistered:
		return e.registeredStats(ctx, caller.UserID, now)
	default:
		logger.Error("unknown caller kind, returning exhausted stats", "kind", caller.Kind)
		return exhaustedStats()
	}
}

func (e *Engine) anonymousStats(ctx context.Context, deviceKey string, now time.Time) UserGenerationStats {
	count, err := e.anonymous.Count(ctx, deviceKey, datekey.DayOf(now))
	if err != nil {
		logger.ErrorErr(err, "anonymous quota lookup failed, returning exhausted stats",
			"device_key", deviceKey,
		)
		return exhaustedStats()
	}

	remaining := DailyLimitAnonymous - count
	if remaining < 0 {
		remaining = 0
	}

	return UserGenerationStats{
		Count:                   count,
		LastGeneratedAt:         nil, // anonymous history is not tracked across sessions
		RemainingToday:          remaining,
		FreeGenerationAvailable: count < DailyLimitAnonymous,
		IsPaidUser:              false,
		MonthlyLimit:            nil,
		RemainingMonthly:        nil,
	}
}

func (e *Engine) registeredStats(ctx context.Context, userID string, now time.Time) UserGenerationStats {
	ent := e.resolveEntitlement(ctx, userID)

	latest, err := e.stats.Latest(ctx, userID)
	if err != nil {
		logger.ErrorErr(err, "usage lookup failed, returning exhausted stats", "user_id", userID)
		return exhaustedStats()
	}

	var lastGeneratedAt *time.Time
	monthCount := 0

	if latest != nil {
		at := latest.UpdatedAt
		lastGeneratedAt = &at

		if datekey.SameMonth(latest.CreatedAt, now) {
			monthCount = latest.MonthlyCount
		}
	}

	if ent.Paid {
		usage, err := e.stats.MonthlyUsage(ctx, userID, datekey.StartOfMonth(now))
		if err != nil {
			logger.ErrorErr(err, "monthly usage lookup failed, returning exhausted stats",
				"user_id", userID,
			)
			return exhaustedStats()
		}

		remaining := ent.MonthlyLimit - usage
		if remaining < 0 {
			remaining = 0
		}

		limit := ent.MonthlyLimit

		return UserGenerationStats{
			Count:                   usage,
			LastGeneratedAt:         lastGeneratedAt,
			RemainingToday:          UnlimitedDailySentinel,
			FreeGenerationAvailable: remaining > 0,
			IsPaidUser:              true,
			MonthlyLimit:            &limit,
			RemainingMonthly:        &remaining,
		}
	}

	dailyCount := 0
	if latest != nil && datekey.SameDay(latest.CreatedAt, now) {
		dailyCount = latest.DailyCount
	}

	remaining := DailyLimitRegisteredFree - dailyCount
	if remaining < 0 {
		remaining = 0
	}

	return UserGenerationStats{
		Count:                   monthCount,
		LastGeneratedAt:         lastGeneratedAt,
		RemainingToday:          remaining,
		FreeGenerationAvailable: remaining > 0,
		IsPaidUser:              false,
		MonthlyLimit:            nil,
		RemainingMonthly:        nil,
	}
}

// resolves the user's entitlement, falling back to the free tier when the
// lookup fails. Failing toward free keeps a broken subscription table from
// granting unlimited access.
func (e *Engine) resolveEntitlement(ctx context.Context, userID string) Entitlement {
	ent, err := e.subscriptions.EntitlementFor(ctx, userID)
	if err != nil {
		logger.ErrorErr(err, "subscription lookup failed, treating as free tier",
			"user_id", userID,
		)
		return Free
	}

	return ent
}

// the conservative stats object used when a lookup fails
func exhaustedStats() UserGenerationStats {
	return UserGenerationStats{
		Count:                   0,
		LastGeneratedAt:         nil,
		RemainingToday:          0,
		FreeGenerationAvailable: false,
		IsPaidUser:              false,
		MonthlyLimit:            nil,
		RemainingMonthly:        nil,
	}
}
