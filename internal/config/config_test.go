package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestLoad_Defaults tests that an empty environment yields a usable config.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Env != EnvDevelopment || cfg.DBPath != "gritgym.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.SlowQuery != 100*time.Millisecond {
		t.Errorf("unexpected durations: %v %v", cfg.SessionTTL, cfg.SlowQuery)
	}
	if cfg.Location.String() != "Asia/Manila" {
		t.Errorf("location = %s", cfg.Location)
	}
}

// TestLoad_Errors tests rejected environments.
func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without csrf key", map[string]string{"GRIT_ENV": "production"}},
		{"bad timezone", map[string]string{"GRIT_TIMEZONE": "Mars/Olympus"}},
		{"bad rate", map[string]string{"GRIT_RATE_LIMIT": "0"}},
		{"bad slow query", map[string]string{"GRIT_SLOW_QUERY_MS": "fast"}},
		{"bad ttl", map[string]string{"GRIT_SESSION_TTL": "-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(envMap(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestLoad_Production tests a complete production environment.
func TestLoad_Production(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"GRIT_ENV":      "production",
		"GRIT_CSRF_KEY": "0123456789abcdef0123456789abcdef",
		"GRIT_TIMEZONE": "UTC",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}
