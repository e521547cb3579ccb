package generations

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatRecord is one row of the generation_stats table. One conceptual row
// per user per UTC day; monthly_count is a running cumulative total
// carried forward from row to row within a month.
type StatRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DailyCount   int       `json:"daily_count"`
	MonthlyCount int       `json:"monthly_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository persists generation stats in Postgres. It implements
// quota.StatsStore.
type Repository struct {
	db *pgxpool.Pool
}
