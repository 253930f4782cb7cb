package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DEV_DATABASE_URL", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load("")

	if cfg.Profile != ProfileDevelopment {
		t.Errorf("Expected profile '%s', got '%s'", ProfileDevelopment, cfg.Profile)
	}
	if !cfg.Debug {
		t.Errorf("Expected development profile to enable debug")
	}
	if cfg.Database.URI != "sqlite://hospital.db" {
		t.Errorf("Expected default database URI 'sqlite://hospital.db', got '%s'", cfg.Database.URI)
	}
	if cfg.SecretKey != defaultSecretKey {
		t.Errorf("Expected default secret key, got '%s'", cfg.SecretKey)
	}
	if cfg.HTTP.Addr != ":5000" {
		t.Errorf("Expected HTTP_ADDR default ':5000', got '%s'", cfg.HTTP.Addr)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Errorf("Expected SESSION_TTL default 12h, got %s", cfg.Session.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL default 'debug' in development, got '%s'", cfg.Log.Level)
	}
}

func TestLoad_ProfileSelectsDatabase(t *testing.T) {
	t.Setenv("DEV_DATABASE_URL", "sqlite://dev.db")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/hospital?sslmode=disable")

	if got := Load(ProfileDevelopment).Database.URI; got != "sqlite://dev.db" {
		t.Errorf("development: expected DEV_DATABASE_URL, got '%s'", got)
	}
	prod := Load(ProfileProduction)
	if prod.Database.URI != "postgres://app:secret@db:5432/hospital?sslmode=disable" {
		t.Errorf("production: expected DATABASE_URL, got '%s'", prod.Database.URI)
	}
	if prod.Debug {
		t.Errorf("production: expected debug disabled")
	}
	if got := Load(ProfileTesting).Database.URI; got != "sqlite://test_hospital.db" {
		t.Errorf("testing: expected fixed test database, got '%s'", got)
	}
}

func TestLoad_UnknownProfileFallsBackToDevelopment(t *testing.T) {
	cfg := Load("staging")
	if cfg.Profile != ProfileDevelopment {
		t.Errorf("Expected fallback to development, got '%s'", cfg.Profile)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGIN", "http://a.local/, http://b.local")
	t.Setenv("SESSION_TTL", "bogus")
	t.Setenv("SEED_USERS", "false")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load(ProfileProduction)

	if cfg.SecretKey != "s3cret" {
		t.Errorf("Expected SECRET_KEY 's3cret', got '%s'", cfg.SecretKey)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6380" || cfg.Redis.DB != 3 {
		t.Errorf("Unexpected redis config: %+v", cfg.Redis)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[0] != "http://a.local" {
		t.Errorf("Unexpected CORS origins: %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Errorf("Expected invalid SESSION_TTL to fall back to 12h, got %s", cfg.Session.TTL)
	}
	if cfg.SeedUsers {
		t.Errorf("Expected SEED_USERS=false to disable seeding")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected production LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}
