package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "postgres://example")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown store driver")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("INFINITEPAY_CHECKOUT_URL", "")
	t.Setenv("RUNTIME_WAIT_MS", "")
	t.Setenv("PENDING_TTL_MINUTES", "")
	t.Setenv("DB_MAX_CONNS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want 8080", cfg.Port)
	}
	if cfg.CheckoutURL != "https://api.infinitepay.io/invoices/public/checkout/links" {
		t.Fatalf("CheckoutURL mismatch: got %q", cfg.CheckoutURL)
	}
	if cfg.RuntimeWait != 2*time.Second {
		t.Fatalf("RuntimeWait mismatch: got %s", cfg.RuntimeWait)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns mismatch: got %d", cfg.DBMaxConns)
	}
	if cfg.PendingTTL != 24*time.Hour {
		t.Fatalf("PendingTTL mismatch: got %s", cfg.PendingTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com ,,https://b.example.com ")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.AllowedOrigins) != len(expected) {
		t.Fatalf("AllowedOrigins mismatch: got %#v want %#v", cfg.AllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("RateLimitPerMin should fall back to default, got %d", cfg.RateLimitPerMin)
	}
}

func TestLoadConfigRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PENDING_TTL_MINUTES", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for zero pending ttl")
	}
}

func TestLoadConfigRejectsNonPositivePoolSize(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DB_MAX_CONNS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for DB_MAX_CONNS=0")
	}
}
