package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADMIN_API_KEY", "fp_admin_test")
	t.Setenv("INGEST_TOKEN_SECRET", "sekrit")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.EventStoreBackend != BackendRedis {
		t.Errorf("EventStoreBackend = %q, want redis", cfg.EventStoreBackend)
	}
	if cfg.SiteTimezone != "UTC" {
		t.Errorf("SiteTimezone = %q, want UTC", cfg.SiteTimezone)
	}
	if cfg.RateLimitTTL != 3*time.Second {
		t.Errorf("RateLimitTTL = %v, want 3s", cfg.RateLimitTTL)
	}
	if cfg.IngestTokenTTL != 15*time.Minute {
		t.Errorf("IngestTokenTTL = %v, want 15m", cfg.IngestTokenTTL)
	}
	if !cfg.RateLimitEnabled {
		t.Error("rate limiting should default to enabled")
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_URL", "")
	os.Unsetenv("REDIS_URL")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing REDIS_URL")
	}
}

func TestLoad_PostgresBackendNeedsDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVENT_STORE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Error("postgres backend without DATABASE_URL should fail validation")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/fiberpulse")
	if _, err := Load(); err != nil {
		t.Errorf("load with DATABASE_URL: %v", err)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVENT_STORE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SITE_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestGetCORSAllowedOrigins(t *testing.T) {
	t.Parallel()

	cfg := &Config{CORSAllowedOrigins: "https://a.example, https://b.example ,"}
	got := cfg.GetCORSAllowedOrigins()

	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("origins = %v", got)
	}

	cfg = &Config{}
	if cfg.GetCORSAllowedOrigins() != nil {
		t.Error("empty origins should return nil")
	}
}
