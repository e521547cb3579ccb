package generations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
	"codeberg.org/printableperks/server/internal/logger"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new generation stats repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns the newest usage row for the user, or nil if none exists
func (r *Repository) Latest(ctx context.Context, userID string) (*quota.StatSnapshot, error) {
	record, err := r.latestRecord(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		return nil, nil
	}

	return &quota.StatSnapshot{
		DailyCount:   record.DailyCount,
		MonthlyCount: record.MonthlyCount,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}, nil
}

// returns the cumulative monthly count for rows created at or after
// monthStart; 0 when no rows exist this month
func (r *Repository) MonthlyUsage(ctx context.Context, userID string, monthStart time.Time) (int, error) {
	var count int

	err := r.db.QueryRow(ctx, querySelectMonthly, userID, monthStart).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read monthly usage: %w", err)
	}

	return count, nil
}

// durably adds one generation at the given instant. The transaction holds
// a per-user advisory lock, so concurrent calls for the same user
// serialize and no increment is lost. The day and month windows roll
// independently:
//
//   - same UTC day: increment both counters on the existing row
//   - new day, same month: new row with daily_count = 1 and the monthly
//     total carried forward
//   - new month (or no row): new row with both counters at 1
func (r *Repository) Record(ctx context.Context, userID string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, queryAdvisoryLock, userID); err != nil {
		return fmt.Errorf("failed to acquire user lock: %w", err)
	}

	latest, err := r.latestRecord(ctx, tx, userID)
	if err != nil {
		return err
	}

	switch {
	case latest == nil || !datekey.SameMonth(latest.CreatedAt, now):
		_, err = tx.Exec(ctx, queryInsertRecord, userID, 1, 1)
	case datekey.SameDay(latest.CreatedAt, now):
		_, err = tx.Exec(ctx, queryIncrementRecord, latest.ID)
	default:
		// new day inside the month: daily resets, monthly carries forward
		_, err = tx.Exec(ctx, queryInsertRecord, userID, 1, latest.MonthlyCount+1)
	}

	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit generation record: %w", err)
	}

	return nil
}

// rows and row-querying are shared by the pool and an open transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) latestRecord(ctx context.Context, q querier, userID string) (*StatRecord, error) {
	var record StatRecord

	err := q.QueryRow(ctx, querySelectLatest, userID).Scan(
		&record.ID,
		&record.UserID,
		&record.DailyCount,
		&record.MonthlyCount,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read latest generation record: %w", err)
	}

	return &record, nil
}
