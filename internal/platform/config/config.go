package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Search caps. The raw cap is deliberately larger than the return cap so
// application-level scoring can reorder before truncation.
const (
	MaxRawResults    = 50
	MaxReturnResults = 20
)

// Config captures all runtime settings. It is built once at startup,
// validated, and never mutated afterwards; thresholds that used to live in a
// free-form property bag are named fields here.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig

	// Statistics snapshot TTL on the server side.
	StatisticsTTL time.Duration

	// Minimum lengths for the exact-match fast path and partial filters.
	IdentifierMinLength int
	PhoneMinLength      int
	PartialMinLength    int

	// SearchTimeout bounds one search request end to end.
	SearchTimeout time.Duration
}

// RedisConfig mirrors the connection settings of the snapshot store.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:                envOr("SMARTSEARCH_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("SMARTSEARCH_DATABASE_URL"),
		StatisticsTTL:       envDuration("SMARTSEARCH_STATS_TTL", 24*time.Hour),
		IdentifierMinLength: envInt("SMARTSEARCH_IDENTIFIER_MIN_LENGTH", 8),
		PhoneMinLength:      envInt("SMARTSEARCH_PHONE_MIN_LENGTH", 8),
		PartialMinLength:    envInt("SMARTSEARCH_PARTIAL_MIN_LENGTH", 4),
		SearchTimeout:       envDuration("SMARTSEARCH_SEARCH_TIMEOUT", 30*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("SMARTSEARCH_REDIS_URL"),
			PoolSize:     envInt("SMARTSEARCH_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SMARTSEARCH_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("SMARTSEARCH_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SMARTSEARCH_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SMARTSEARCH_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

// Validate rejects configurations that would silently break scoring or the
// confidence estimate.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.StatisticsTTL <= 0 {
		return fmt.Errorf("statistics TTL must be positive, got %s", c.StatisticsTTL)
	}
	if c.IdentifierMinLength < 1 {
		return fmt.Errorf("identifier minimum length must be at least 1, got %d", c.IdentifierMinLength)
	}
	if c.PhoneMinLength < 1 {
		return fmt.Errorf("phone minimum length must be at least 1, got %d", c.PhoneMinLength)
	}
	if c.PartialMinLength < 1 {
		return fmt.Errorf("partial minimum length must be at least 1, got %d", c.PartialMinLength)
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive, got %s", c.SearchTimeout)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envDuration(key string, fallback time.Duration) time.Duration {
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
