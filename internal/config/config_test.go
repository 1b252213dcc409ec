package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKHUB_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", cfg.Port)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("default cache TTL = %s, want 5m", cfg.CacheTTL)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("TASKHUB_AUTH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when auth secret is missing")
	}
}

func TestValidateAdminPair(t *testing.T) {
	cfg := &Config{
		AuthSecret: "s",
		Port:       8080,
		TokenTTL:   time.Minute,
		CacheTTL:   time.Minute,
		AdminEmail: "admin@example.com",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when admin password is missing")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "https://a.example, https://b.example ,"}
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins() = %v", got)
	}
}
