// Package reconcile expires contributions that never left pending, which is
// what a checkout abandoned before payment looks like.
package reconcile

import (
	"context"
	"errors"
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// StaleLister finds pending contributions created before a cutoff.
type StaleLister interface {
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Contribution, error)
}

// StatusUpdater applies a guarded status change.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status domain.ContributionStatus, transactionNSU *string) (*domain.Contribution, error)
}

type Options struct {
	TTL       time.Duration
	BatchSize int
	Now       func() time.Time
	Logger    *infra.Logger
}

// Sweeper marks stale pending contributions as failed.
type Sweeper struct {
	stale   StaleLister
	updater StatusUpdater
	ttl     time.Duration
	batch   int
	now     func() time.Time
	logger  *infra.Logger
}

// Result summarises one sweep.
type Result struct {
	Scanned int
	Expired int
	Skipped int
}

func NewSweeper(stale StaleLister, updater StatusUpdater, opts Options) *Sweeper {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	return &Sweeper{
		stale:   stale,
		updater: updater,
		ttl:     opts.TTL,
		batch:   opts.BatchSize,
		now:     opts.Now,
		logger:  opts.Logger,
	}
}

// Sweep expires one batch. A contribution settled concurrently loses the
// compare-and-set and is counted as skipped.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result
	cutoff := s.now().Add(-s.ttl)
	stale, err := s.stale.ListStalePending(ctx, cutoff, s.batch)
	if err != nil {
		return res, err
	}
	res.Scanned = len(stale)
	for _, c := range stale {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.updater.UpdateStatus(ctx, c.ID, domain.ContributionFailed, nil)
		switch {
		case err == nil:
			res.Expired++
			s.logger.Info().
				Str("contribution_id", c.ID).
				Str("campaign_id", c.CampaignID).
				Time("created_at", c.CreatedAt).
				Bool("checkout_started", c.OrderNSU != nil).
				Msg("reconcile: pending contribution expired")
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotFound):
			res.Skipped++
		default:
			return res, err
		}
	}
	return res, nil
}

// Run sweeps immediately and then every interval until ctx is done. Sweep
// errors are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Dur("ttl", s.ttl).Msg("reconcile: started")
	for {
		res, err := s.Sweep(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("reconcile: sweep failed")
		} else if res.Scanned > 0 {
			s.logger.Info().
				Int("scanned", res.Scanned).
				Int("expired", res.Expired).
				Int("skipped", res.Skipped).
				Msg("reconcile: sweep finished")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
