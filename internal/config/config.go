// Package config loads server configuration from the environment,
// reading a local .env file first when present.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr         string
	DBPath       string
	JWTSecret    string
	JWTExpiresIn time.Duration
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first if it exists.
func Load() Config {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := Config{
		Addr:         ":" + getEnv("PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "./data/budgetbook.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		JWTExpiresIn: 24 * time.Hour,
	}

	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWTExpiresIn = d
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
