package service

import (
	"context"
	"strings"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// ContributionDetail is a contribution together with its parent campaign view.
type ContributionDetail struct {
	Contribution domain.Contribution
	Campaign     domain.CampaignView
}

// ContributionService implements the contribution store operations.
type ContributionService struct {
	contributions domain.ContributionRepository
	campaigns     *CampaignService
	logger        *infra.Logger
}

func NewContributionService(contributions domain.ContributionRepository, campaigns *CampaignService, logger *infra.Logger) *ContributionService {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &ContributionService{contributions: contributions, campaigns: campaigns, logger: logger}
}

// Create validates the input and records a pending contribution. Invalid input
// never reaches the store.
func (s *ContributionService) Create(ctx context.Context, in domain.ContributionInput) (*domain.Contribution, error) {
	contribution, err := domain.NewContribution(in)
	if err != nil {
		return nil, err
	}
	if err := s.contributions.Create(ctx, contribution); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("contribution_id", contribution.ID).
		Str("campaign_id", contribution.CampaignID).
		Str("amount", contribution.Amount.StringFixed(2)).
		Msg("contribution pending")
	return contribution, nil
}

// Get returns the contribution and its parent campaign.
func (s *ContributionService) Get(ctx context.Context, id string) (*ContributionDetail, error) {
	contribution, err := s.contributions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign, err := s.campaigns.Get(ctx, contribution.CampaignID)
	if err != nil {
		return nil, err
	}
	return &ContributionDetail{Contribution: *contribution, Campaign: *campaign}, nil
}

// UpdateStatus applies a guarded status transition. Replaying the current
// terminal status with the same reference returns the record unchanged.
func (s *ContributionService) UpdateStatus(ctx context.Context, id string, status domain.ContributionStatus, transactionNSU *string) (*domain.Contribution, error) {
	if transactionNSU != nil {
		ref := strings.TrimSpace(*transactionNSU)
		if ref == "" {
			transactionNSU = nil
		} else {
			transactionNSU = &ref
		}
	}
	current, err := s.contributions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.CheckTransition(status, transactionNSU); err != nil {
		return nil, err
	}
	if current.IsReplay(status, transactionNSU) {
		return current, nil
	}
	updated, err := s.contributions.TransitionStatus(ctx, id, current.Status, status, transactionNSU)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("contribution_id", id).
		Str("from", string(current.Status)).
		Str("to", string(status)).
		Msg("contribution status changed")
	return updated, nil
}

// Settle completes a contribution by hand with the provider transaction
// reference. It is the only path from failed back to completed; the HTTP
// status patch keeps the strict pending-only guard.
func (s *ContributionService) Settle(ctx context.Context, id, transactionNSU string) (*domain.Contribution, error) {
	ref := strings.TrimSpace(transactionNSU)
	current, err := s.contributions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.CheckSettlement(ref); err != nil {
		return nil, err
	}
	if current.IsReplay(domain.ContributionCompleted, &ref) {
		return current, nil
	}
	updated, err := s.contributions.TransitionStatus(ctx, id, current.Status, domain.ContributionCompleted, &ref)
	if err != nil {
		return nil, err
	}
	s.logger.Warn().
		Str("contribution_id", id).
		Str("from", string(current.Status)).
		Str("transaction_nsu", ref).
		Msg("contribution settled manually")
	return updated, nil
}

// AttachOrder records the checkout order reference on a pending contribution.
func (s *ContributionService) AttachOrder(ctx context.Context, id, orderNSU string) error {
	return s.contributions.AttachOrderNSU(ctx, id, orderNSU)
}
