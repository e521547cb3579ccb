package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"codeberg.org/printableperks/server/internal/auth"
	"codeberg.org/printableperks/server/perks/subscriptions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// mints a JWT for a test user and optionally seeds an active subscription,
// so paid-tier quota paths can be exercised against a real database.
//
// Usage: go run scripts/gen_test_token.go <user_id> [plan_name]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/gen_test_token.go <user_id> [plan_name]")
		fmt.Println("Example: go run scripts/gen_test_token.go 4f3a...d1 Creator")
		os.Exit(1)
	}

	userID := os.Args[1]
	testEmail := "test@printableperks.dev"

	if len(os.Args) >= 3 {
		planName := os.Args[2]

		plan, ok := subscriptions.PlanByName(planName)
		if !ok {
			log.Fatalf("Unknown plan %q", planName)
		}

		dbConnString := os.Getenv("SUPABASE_CONNECTION_STRING")
		if dbConnString == "" {
			log.Fatal("SUPABASE_CONNECTION_STRING not set")
		}

		dbPool, err := pgxpool.New(context.Background(), dbConnString)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		ctx := context.Background()

		_, err = dbPool.Exec(ctx, `
			INSERT INTO subscriptions
				(id, user_id, plan_name, plan_price, monthly_generation_limit, status,
				 current_period_start, current_period_end, created_at, updated_at)
			VALUES
				(gen_random_uuid(), $1, $2, $3, $4, 'active',
				 NOW(), NOW() + INTERVAL '1 month', NOW(), NOW())
		`, userID, plan.Name, plan.PriceUSD, plan.MonthlyGenerationLimit)

		if err != nil {
			log.Fatalf("Failed to seed subscription: %v", err)
		}

		fmt.Printf("✅ Seeded active %s subscription for user %s\n", plan.Name, userID)
	}

	token, err := auth.GenerateJWT(userID, testEmail)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\n🔑 Test JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
