package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	supabaseConnStr := os.Getenv("SUPABASE_CONNECTION_STRING")
	redisURL := os.Getenv("REDIS_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	runwareKey := os.Getenv("RUNWARE_API_KEY")
	environment := os.Getenv("ENVIRONMENT")

	if supabaseConnStr == "" {
		return nil, fmt.Errorf("SUPABASE_CONNECTION_STRING environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if runwareKey == "" {
		return nil, fmt.Errorf("RUNWARE_API_KEY environment variable is required")
	}

	if environment == "" {
		environment = "development"
	}

	// redis is optional in development - quota counters fall back to memory
	if redisURL == "" && environment == "production" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required in production")
	}

	return &Config{
		SupabaseConnString: supabaseConnStr,
		RedisURL:           redisURL,
		JWTSecret:          jwtSecret,
		RunwareAPIKey:      runwareKey,
		Environment:        environment,
	}, nil
}
