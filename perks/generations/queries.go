package generations

const (
	querySelectLatest = `
		SELECT id, user_id, daily_count, monthly_count, created_at, updated_at
		FROM generation_stats
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	querySelectMonthly = `
		SELECT monthly_count
		FROM generation_stats
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryInsertRecord = `
		INSERT INTO generation_stats (user_id, daily_count, monthly_count)
		VALUES ($1, $2, $3)
	`

	// database-level increment expression so concurrent updates are never lost
	queryIncrementRecord = `
		UPDATE generation_stats
		SET daily_count = daily_count + 1,
		    monthly_count = monthly_count + 1,
		    updated_at = NOW()
		WHERE id = $1
	`

	// serializes Record calls per user for the duration of the transaction;
	// released automatically at commit or rollback
	queryAdvisoryLock = `SELECT pg_advisory_xact_lock(hashtext($1))`
)
