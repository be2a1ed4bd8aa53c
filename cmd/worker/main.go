package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"crowdfund/internal/bootstrap"
	"crowdfund/internal/infra"
	"crowdfund/internal/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: store connection failed")
	}
	defer stores.Close()
	_, contributions := stores.Services(&logger)

	sweeper := reconcile.NewSweeper(stores.Contributions, contributions, reconcile.Options{
		TTL:       cfg.PendingTTL,
		BatchSize: cfg.ReconcileBatchSize,
		Logger:    &logger,
	})
	if err := sweeper.Run(ctx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
