package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StoreDriver        string
	DatabaseURL        string
	DBMaxConns         int
	IdentitySecret     string
	AllowedOrigins     []string
	RedisAddr          string
	GeoIPDBPath        string
	DefaultLocale      string
	CheckoutURL        string
	CheckoutTimeout    time.Duration
	RuntimeWait        time.Duration
	ReconcileInterval  time.Duration
	PendingTTL         time.Duration
	ReconcileBatchSize int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		IdentitySecret:     os.Getenv("IDENTITY_TOKEN_SECRET"),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "pt-BR"),
		CheckoutURL:        getEnv("INFINITEPAY_CHECKOUT_URL", "https://api.infinitepay.io/invoices/public/checkout/links"),
		CheckoutTimeout:    time.Second * time.Duration(getEnvInt("INFINITEPAY_TIMEOUT_SECONDS", 15)),
		RuntimeWait:        time.Millisecond * time.Duration(getEnvInt("RUNTIME_WAIT_MS", 2000)),
		ReconcileInterval:  time.Second * time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", 300)),
		PendingTTL:         time.Minute * time.Duration(getEnvInt("PENDING_TTL_MINUTES", 1440)),
		ReconcileBatchSize: getEnvInt("RECONCILE_BATCH_SIZE", 100),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.DBMaxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.PendingTTL <= 0 {
		return nil, fmt.Errorf("PENDING_TTL_MINUTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
