package config

type Config struct {
	SupabaseConnString string
	RedisURL           string
	JWTSecret          string
	RunwareAPIKey      string
	Environment        string
}
