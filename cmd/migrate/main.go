package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crowdfund/internal/infra"
)

func main() {
	direction := flag.String("direction", "up", "up, down or status")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: db connection failed")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool, *direction, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate: failed")
	}
	logger.Info().Str("direction", *direction).Msg("migrate: done")
}
