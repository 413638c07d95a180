package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server and CLI read from the environment.
type Config struct {
	Port         string
	DatabaseURL  string
	ClientOrigin string

	// Edge rate limiting: RateLimitMax requests per RateLimitWindow per client.
	RateLimitWindow time.Duration
	RateLimitMax    int

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	// APIURL is the base URL the client-side pieces talk to.
	APIURL string
}

// Load reads configuration from environment variables, falling back to
// local-development defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=jobtrail port=5432 sslmode=disable"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:3000"),

		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),

		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),

		APIURL: getEnv("API_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
