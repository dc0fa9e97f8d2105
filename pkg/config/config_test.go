package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POINTSHOP_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Env != AppEnvDev {
		t.Fatalf("env = %q, want %q", cfg.App.Env, AppEnvDev)
	}
	if cfg.App.Port != "5000" {
		t.Fatalf("port = %q, want 5000", cfg.App.Port)
	}
	if cfg.Data.Dir != "./data" {
		t.Fatalf("data dir = %q, want ./data", cfg.Data.Dir)
	}
	if cfg.JWT.Issuer != "pointshop" {
		t.Fatalf("issuer = %q, want pointshop", cfg.JWT.Issuer)
	}
	if cfg.JWT.ExpirationMinutes != 10080 {
		t.Fatalf("expiration = %d, want 10080", cfg.JWT.ExpirationMinutes)
	}
	if cfg.Topup.CodeLength != 8 {
		t.Fatalf("code length = %d, want 8", cfg.Topup.CodeLength)
	}
	if cfg.Topup.MaxPerBatch != 100 {
		t.Fatalf("max per batch = %d, want 100", cfg.Topup.MaxPerBatch)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POINTSHOP_JWT_SECRET", "test-secret")
	t.Setenv("POINTSHOP_APP_ENV", "prod")
	t.Setenv("POINTSHOP_APP_PORT", "8080")
	t.Setenv("POINTSHOP_DATA_DIR", "/var/lib/pointshop")
	t.Setenv("POINTSHOP_TOPUP_CODE_LENGTH", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatal("expected prod env")
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.App.Port)
	}
	if cfg.Data.Dir != "/var/lib/pointshop" {
		t.Fatalf("data dir = %q", cfg.Data.Dir)
	}
	if cfg.Topup.CodeLength != 12 {
		t.Fatalf("code length = %d, want 12", cfg.Topup.CodeLength)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("POINTSHOP_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when jwt secret missing")
	}
}

func TestEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "DEV"}).IsDev() {
		t.Fatal("IsDev should be case-insensitive")
	}
	if (AppConfig{Env: "dev"}).IsProd() {
		t.Fatal("dev is not prod")
	}
}
