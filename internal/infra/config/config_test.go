package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-signing-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "auth-service" {
		t.Fatalf("unexpected app name: %s", cfg.App.Name)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.JWT.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("unexpected refresh TTL: %v", cfg.JWT.RefreshTokenTTL)
	}
	if cfg.Argon2.Memory != 65536 {
		t.Fatalf("unexpected argon2 memory: %d", cfg.Argon2.Memory)
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		t.Fatal("expected default CORS methods")
	}
	if cfg.CORS.MaxAge != 12*time.Hour {
		t.Fatalf("unexpected CORS max age: %v", cfg.CORS.MaxAge)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-signing-secret")
	t.Setenv("AUTH_JWT_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("AUTH_APP_PORT", "9091")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.JWT.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected access TTL override, got %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.App.Port != 9091 {
		t.Fatalf("expected port override, got %d", cfg.App.Port)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load expected to fail without a signing secret")
	}
}

func TestLoadRejectsInvertedTTLs(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-signing-secret")
	t.Setenv("AUTH_JWT_ACCESS_TOKEN_TTL", "24h")
	t.Setenv("AUTH_JWT_REFRESH_TOKEN_TTL", "1h")

	if _, err := Load(); err == nil {
		t.Fatal("Load expected to reject refresh TTL shorter than access TTL")
	}
}
