package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database settings are required; the
// booking-hold TTL is optional and a zero value disables the stale
// booking reaper entirely (no timeout is assumed on its behalf).
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	HoldTTL      time.Duration // how long a Pending booking may stay unconfirmed; 0 disables expiry
	GridCacheTTL time.Duration // lifetime of cached seat grids in Redis
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		HoldTTL:      time.Duration(envInt("BOOKING_HOLD_TTL_MIN", 0)) * time.Minute,
		GridCacheTTL: envDur("SEAT_GRID_CACHE_TTL", 30*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an optional integer variable, falling back to d when the
// variable is unset or malformed.
func envInt(key string, d int) int {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur reads an optional duration variable ("30s", "5m"), falling back
// to d when unset or malformed.
func envDur(key string, d time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
