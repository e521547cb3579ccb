package subscriptions

import (
	"time"

	"codeberg.org/printableperks/server/internal/quota"
	"github.com/jackc/pgx/v5/pgxpool"
)

// subscription row statuses
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
)

// Subscription is one row of the subscriptions table. Rows are written at
// purchase time by the billing webhook; this package only reads them.
type Subscription struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	PlanName               string    `json:"plan_name"`
	PlanPrice              float64   `json:"plan_price"`
	MonthlyGenerationLimit int       `json:"monthly_generation_limit"`
	Status                 string    `json:"status"`
	CurrentPeriodStart     time.Time `json:"current_period_start"`
	CurrentPeriodEnd       time.Time `json:"current_period_end"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// maps a subscription row to the quota entitlement it grants. A nil or
// non-active row grants the free tier. The monthly_generation_limit column
// is the single source of truth for the limit; plan price is carried as
// display data only.
func (s *Subscription) Entitlement() quota.Entitlement {
	if s == nil || s.Status != StatusActive {
		return quota.Free
	}

	return quota.Entitlement{
		Paid:         true,
		PlanName:     s.PlanName,
		MonthlyLimit: s.MonthlyGenerationLimit,
		PeriodStart:  s.CurrentPeriodStart,
		PeriodEnd:    s.CurrentPeriodEnd,
	}
}

// Repository reads subscription rows from Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// Plan describes a purchasable tier. The catalog seeds
// monthly_generation_limit on the subscription row at purchase time.
type Plan struct {
	Name                   string  `json:"name"`
	PriceUSD               float64 `json:"price_usd"`
	MonthlyGenerationLimit int     `json:"monthly_generation_limit"`
}

// the purchasable tiers
var Plans = []Plan{
	{Name: "Creator", PriceUSD: 5, MonthlyGenerationLimit: 300},
	{Name: "Professional", PriceUSD: 8, MonthlyGenerationLimit: 500},
}

// returns the catalog plan with the given name
func PlanByName(name string) (Plan, bool) {
	for _, plan := range Plans {
		if plan.Name == name {
			return plan, true
		}
	}

	return Plan{}, false
}
