// Package service composes the stores into the operations exposed over HTTP.
// Campaign reads always go through CampaignView so the raised amount is
// recomputed from completed contributions on every fetch.
package service

import (
	"context"
	"fmt"
	"strings"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// CampaignService implements campaign CRUD and the aggregation views.
type CampaignService struct {
	campaigns     domain.CampaignRepository
	contributions domain.ContributionRepository
	logger        *infra.Logger
}

func NewCampaignService(campaigns domain.CampaignRepository, contributions domain.ContributionRepository, logger *infra.Logger) *CampaignService {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &CampaignService{campaigns: campaigns, contributions: contributions, logger: logger}
}

// Create validates and persists a new campaign.
func (s *CampaignService) Create(ctx context.Context, in domain.CampaignInput) (*domain.Campaign, error) {
	campaign, err := domain.NewCampaign(in)
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", campaign.ID).Str("user_id", campaign.UserID).Msg("campaign created")
	return campaign, nil
}

// Get returns the campaign with its completed contributions and raised amount.
func (s *CampaignService) Get(ctx context.Context, id string) (*domain.CampaignView, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.project(ctx, []domain.Campaign{*campaign})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns all campaigns, newest first.
func (s *CampaignService) List(ctx context.Context) ([]domain.CampaignView, error) {
	campaigns, err := s.campaigns.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, campaigns)
}

// ListByOwner returns the campaigns of one owner, newest first.
func (s *CampaignService) ListByOwner(ctx context.Context, userID string) ([]domain.CampaignView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	campaigns, err := s.campaigns.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, campaigns)
}

// Update changes the owner-editable fields. actorID is the caller identity;
// when set it must match the campaign owner.
func (s *CampaignService) Update(ctx context.Context, id, actorID string, in domain.CampaignInput) (*domain.Campaign, error) {
	current, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != "" && current.UserID != "" && !current.OwnedBy(actorID) {
		return nil, fmt.Errorf("%w: campaign %s belongs to another user", domain.ErrForbidden, id)
	}
	upd, err := in.Validate()
	if err != nil {
		return nil, err
	}
	updated, err := s.campaigns.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", id).Msg("campaign updated")
	return updated, nil
}

func (s *CampaignService) project(ctx context.Context, campaigns []domain.Campaign) ([]domain.CampaignView, error) {
	views := make([]domain.CampaignView, 0, len(campaigns))
	if len(campaigns) == 0 {
		return views, nil
	}
	ids := make([]string, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	contributions, err := s.contributions.ListCompletedByCampaigns(ctx, ids)
	if err != nil {
		return nil, err
	}
	byCampaign := make(map[string][]domain.Contribution, len(campaigns))
	for _, c := range contributions {
		byCampaign[c.CampaignID] = append(byCampaign[c.CampaignID], c)
	}
	for _, c := range campaigns {
		views = append(views, domain.NewCampaignView(c, byCampaign[c.ID]))
	}
	return views, nil
}
