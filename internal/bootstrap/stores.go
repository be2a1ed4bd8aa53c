// Package bootstrap builds the stores and services shared by the binaries.
package bootstrap

import (
	"context"

	"crowdfund/internal/adapter/memory"
	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/service"
)

// Stores holds the repositories for the configured driver.
type Stores struct {
	Campaigns     domain.CampaignRepository
	Contributions domain.ContributionRepository
	close         func()
}

// Close releases the database pool, if any.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to PostgreSQL, or builds an in-memory store when
// STORE_DRIVER=memory.
func OpenStores(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Stores, error) {
	if cfg.StoreDriver == infra.StoreMemory {
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore(nil)
		return &Stores{Campaigns: store.Campaigns(), Contributions: store.Contributions()}, nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	return &Stores{
		Campaigns:     repo.NewCampaignRepository(runner),
		Contributions: repo.NewContributionRepository(runner),
		close:         pool.Close,
	}, nil
}

// Services wires the campaign and contribution services over s.
func (s *Stores) Services(logger *infra.Logger) (*service.CampaignService, *service.ContributionService) {
	campaigns := service.NewCampaignService(s.Campaigns, s.Contributions, logger)
	return campaigns, service.NewContributionService(s.Contributions, campaigns, logger)
}
