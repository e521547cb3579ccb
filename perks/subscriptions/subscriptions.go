package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/printableperks/server/internal/logger"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new subscription repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns the user's most recent active subscription, or nil if none
// exists. When the data holds more than one active row the newest wins and
// the inconsistency is logged as a data-quality warning.
func (r *Repository) ActiveFor(ctx context.Context, userID string) (*Subscription, error) {
	rows, err := r.db.Query(ctx, querySelectActive, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subscription: %w", err)
	}

	defer rows.Close()

	var found []Subscription

	for rows.Next() {
		var sub Subscription

		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.PlanName,
			&sub.PlanPrice,
			&sub.MonthlyGenerationLimit,
			&sub.Status,
			&sub.CurrentPeriodStart,
			&sub.CurrentPeriodEnd,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}

		found = append(found, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription rows: %w", err)
	}

	if len(found) == 0 {
		return nil, nil
	}

	if len(found) > 1 {
		logger.Warn("multiple active subscriptions for user, using newest",
			"user_id", userID,
			"newest_plan", found[0].PlanName,
		)
	}

	return &found[0], nil
}

// returns the number of active subscription rows for the user. The
// subscription writer calls this to keep a second active row from being
// created while the schema lacks a unique constraint.
func (r *Repository) CountActive(ctx context.Context, userID string) (int, error) {
	var count int

	err := r.db.QueryRow(ctx, queryCountActive, userID).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	return count, nil
}

// implements quota.SubscriptionResolver
func (r *Repository) EntitlementFor(ctx context.Context, userID string) (quota.Entitlement, error) {
	sub, err := r.ActiveFor(ctx, userID)
	if err != nil {
		return quota.Free, err
	}

	return sub.Entitlement(), nil
}
