package subscriptions

// The schema does not enforce a single active subscription per user (a
// plan upgrade can leave the old row active until the webhook settles).
// Readers pick the newest active row deterministically; the writer-side
// guard uses queryCountActive before inserting. The recommended fix is a
// partial unique index:
//
//	CREATE UNIQUE INDEX idx_subscriptions_single_active
//	ON subscriptions (user_id) WHERE status = 'active';
const (
	// LIMIT 2 so the reader can detect and log duplicate active rows
	// without fetching the whole history
	querySelectActive = `
		SELECT id, user_id, plan_name, plan_price, monthly_generation_limit,
		       status, current_period_start, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 2
	`

	queryCountActive = `
		SELECT COUNT(*)
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
	`
)
