package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"crowdfund/internal/bootstrap"
	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// settle resolves a contribution by hand, typically one whose payment was
// captured but whose completion never reached the API.
func main() {
	var (
		idFlag     string
		statusFlag string
		nsuFlag    string
	)

	flag.StringVar(&idFlag, "id", "", "contribution ID to settle (UUID)")
	flag.StringVar(&statusFlag, "status", "completed", "status to apply (completed, failed)")
	flag.StringVar(&nsuFlag, "nsu", "", "provider transaction reference (required for completed)")
	flag.Parse()

	_ = godotenv.Load()

	id := strings.TrimSpace(idFlag)
	status := domain.ContributionStatus(strings.TrimSpace(strings.ToLower(statusFlag)))
	nsu := strings.TrimSpace(nsuFlag)

	if id == "" {
		exitWithError(errors.New("-id must be provided"))
	}
	switch status {
	case domain.ContributionCompleted:
		if nsu == "" {
			exitWithError(errors.New("-nsu is required when completing a contribution"))
		}
	case domain.ContributionFailed:
	default:
		exitWithError(fmt.Errorf("unsupported status %q", status))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "settle").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer stores.Close()
	_, contributions := stores.Services(&logger)

	var updated *domain.Contribution
	if status == domain.ContributionCompleted {
		// Also reaches contributions the worker already expired.
		updated, err = contributions.Settle(ctx, id, nsu)
	} else {
		var ref *string
		if nsu != "" {
			ref = &nsu
		}
		updated, err = contributions.UpdateStatus(ctx, id, status, ref)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to settle contribution: %w", err))
	}

	fmt.Printf("Contribution %s is now %s\n", updated.ID, updated.Status)
	if updated.TransactionNSU != nil {
		fmt.Printf("transaction_nsu=%s\n", *updated.TransactionNSU)
	}
	if updated.OrderNSU != nil {
		fmt.Printf("order_nsu=%s\n", *updated.OrderNSU)
	}
	fmt.Printf("amount=%s\n", updated.Amount.StringFixed(2))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
