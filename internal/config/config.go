package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // optional; empty disables capture rate limiting
	LogDir      string
	NumWriters  int // store-insert worker goroutines
	RateLimit   int // capture requests per second per client, 0 = unlimited
}

// Load reads configuration from environment variables.
//
// The database can be configured either with DATABASE_URL or with the
// conventional libpq parts (PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE).
// DATABASE_URL wins when both are set.
func Load() (*Config, error) {
	port := getEnv("PORT", "8000")
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = pgURLFromParts()
	}
	redisURL := getEnv("REDIS_URL", "")
	logDir := getEnv("LOG_DIR", "logs")
	numWriters := getEnvInt("NUM_WRITERS", 4)
	rateLimit := getEnvInt("CAPTURE_RATE_LIMIT", 0)

	if numWriters < 1 {
		return nil, fmt.Errorf("NUM_WRITERS must be at least 1")
	}

	return &Config{
		Port:        port,
		DatabaseURL: dbURL,
		RedisURL:    redisURL,
		LogDir:      logDir,
		NumWriters:  numWriters,
		RateLimit:   rateLimit,
	}, nil
}

// pgURLFromParts assembles a connection URL from PG* variables, defaulting to
// a local telemetry database so the service runs out-of-the-box.
func pgURLFromParts() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(getEnv("PGUSER", "postgres"), getEnv("PGPASSWORD", "")),
		Host:   getEnv("PGHOST", "localhost") + ":" + getEnv("PGPORT", "5432"),
		Path:   "/" + getEnv("PGDATABASE", "telemetry"),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
