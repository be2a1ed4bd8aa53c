package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"crowdfund/internal/bootstrap"
	"crowdfund/internal/http/handlers"
	httpapi "crowdfund/internal/http/httpapi"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/geoip"
	"crowdfund/internal/middleware"
	"crowdfund/internal/providers/infinitepay"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer stores.Close()
	campaigns, contributions := stores.Services(&logger)

	gateway := infinitepay.NewClient(infinitepay.Options{
		CheckoutURL:    cfg.CheckoutURL,
		Logger:         &logger,
		RequestTimeout: cfg.CheckoutTimeout,
	})

	app := handlers.NewApp(campaigns, contributions, gateway, &logger)
	app.RuntimeWait = cfg.RuntimeWait
	// The payment runtime lives in the host app; outside production the mock
	// stands in so /me answers without waiting.
	if cfg.AppEnv != "production" {
		app.Runtime.Inject(infinitepay.NewMockRuntime())
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, rate limiting per process")
		} else {
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute)
		}
		cancel()
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		Limiter:         limiter,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   geoip.Lookup(resolver),
		IdentitySecret:  cfg.IdentitySecret,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		if addr, ok := <-server.Addr(); ok {
			logger.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("API listening")
		}
	}()

	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
