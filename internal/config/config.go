// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Addr          string
	Env           string
	DBPath        string
	DatabaseURL   string
	CSRFKey       string
	AdminEmail    string
	AdminPassword string
	ResendKey     string
	ResendFrom    string
	ReplyTo       string
	Location      *time.Location
	RateLimit     float64
	SlowQuery     time.Duration
	SlowRequest   time.Duration
	SessionTTL    time.Duration
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from environment variables with defaults.
// POST: Returns an error for malformed numbers, unknown zones, or a production run without a CSRF key
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Addr:          get("GRIT_ADDR", ":8080"),
		Env:           get("GRIT_ENV", EnvDevelopment),
		DBPath:        get("GRIT_DB_PATH", "gritgym.db"),
		DatabaseURL:   get("GRIT_DATABASE_URL", ""),
		CSRFKey:       get("GRIT_CSRF_KEY", ""),
		AdminEmail:    get("GRIT_ADMIN_EMAIL", "admin@gritgym.ph"),
		AdminPassword: get("GRIT_ADMIN_PASSWORD", "change-me-please"),
		ResendKey:     get("GRIT_RESEND_KEY", ""),
		ResendFrom:    get("GRIT_RESEND_FROM", "Grit Gym <noreply@gritgym.ph>"),
		ReplyTo:       get("GRIT_REPLY_TO", "frontdesk@gritgym.ph"),
	}

	loc, err := time.LoadLocation(get("GRIT_TIMEZONE", "Asia/Manila"))
	if err != nil {
		return nil, fmt.Errorf("GRIT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.RateLimit, err = strconv.ParseFloat(get("GRIT_RATE_LIMIT", "10"), 64)
	if err != nil || cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("GRIT_RATE_LIMIT must be a positive number")
	}

	if cfg.SlowQuery, err = millis(get("GRIT_SLOW_QUERY_MS", "100")); err != nil {
		return nil, fmt.Errorf("GRIT_SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequest, err = millis(get("GRIT_SLOW_REQUEST_MS", "500")); err != nil {
		return nil, fmt.Errorf("GRIT_SLOW_REQUEST_MS: %w", err)
	}

	cfg.SessionTTL, err = time.ParseDuration(get("GRIT_SESSION_TTL", "24h"))
	if err != nil || cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("GRIT_SESSION_TTL must be a positive duration")
	}

	if cfg.IsProduction() && cfg.CSRFKey == "" {
		return nil, fmt.Errorf("GRIT_CSRF_KEY is required in production")
	}
	return cfg, nil
}

func millis(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", s)
	}
	return time.Duration(n) * time.Millisecond, nil
}
