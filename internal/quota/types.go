package quota

import (
	"context"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
)

// per-tier generation limits
const (
	// generations per day for visitors without an account
	DailyLimitAnonymous = 3

	// generations per day for registered users without a subscription
	DailyLimitRegisteredFree = 5

	// reported as remaining_today for paid users, whose daily gate does not apply
	UnlimitedDailySentinel = 999
)

// CallerKind discriminates the identity variants a quota check can see.
type CallerKind int

const (
	CallerAnonymous CallerKind = iota
	CallerRegistered
)

// Caller identifies who is asking for a generation. Identity is supplied
// explicitly on every call; the engine never reads ambient session state.
type Caller struct {
	Kind      CallerKind
	UserID    string // set when Kind == CallerRegistered
	DeviceKey string // set when Kind == CallerAnonymous
}

// returns a caller for an unauthenticated visitor identified by device key
func AnonymousCaller(deviceKey string) Caller {
	return Caller{Kind: CallerAnonymous, DeviceKey: deviceKey}
}

// returns a caller for an authenticated user
func RegisteredCaller(userID string) Caller {
	return Caller{Kind: CallerRegistered, UserID: userID}
}

// Entitlement is the resolved plan state for a registered user. The zero
// value is the free tier.
type Entitlement struct {
	Paid         bool
	PlanName     string
	MonthlyLimit int
	PeriodStart  time.Time
	PeriodEnd    time.Time
}

// Free is the entitlement of a registered user with no active subscription.
var Free = Entitlement{}

// UserGenerationStats is the engine's output contract, computed on demand.
type UserGenerationStats struct {
	Count                   int        `json:"count"`
	LastGeneratedAt         *time.Time `json:"last_generated_at"`
	RemainingToday          int        `json:"remaining_today"`
	FreeGenerationAvailable bool       `json:"free_generation_available"`
	IsPaidUser              bool       `json:"is_paid_user"`
	MonthlyLimit            *int       `json:"monthly_limit"`
	RemainingMonthly        *int       `json:"remaining_monthly"`
}

// AnonymousStore is the durable per-device daily counter for callers
// without an account. A missing or corrupt record reads as zero usage.
type AnonymousStore interface {
	// returns the recorded count for the device on the given day
	Count(ctx context.Context, deviceKey string, day datekey.DayKey) (int, error)

	// adds one generation for the device on the given day and returns the new count
	Increment(ctx context.Context, deviceKey string, day datekey.DayKey) (int, error)
}

// SubscriptionResolver looks up the caller's active paid plan.
type SubscriptionResolver interface {
	// returns the entitlement for the user; Free when no active subscription exists
	EntitlementFor(ctx context.Context, userID string) (Entitlement, error)
}

// StatSnapshot is the authoritative latest usage row for a registered user.
type StatSnapshot struct {
	DailyCount   int
	MonthlyCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StatsStore is the server-persisted usage counter for registered users.
type StatsStore interface {
	// returns the newest usage row for the user, or nil if none exists
	Latest(ctx context.Context, userID string) (*StatSnapshot, error)

	// returns the cumulative monthly count for rows created at or after monthStart
	MonthlyUsage(ctx context.Context, userID string, monthStart time.Time) (int, error)

	// durably adds one generation at the given instant; increments must
	// never be lost under concurrent calls for the same user
	Record(ctx context.Context, userID string, now time.Time) error
}
