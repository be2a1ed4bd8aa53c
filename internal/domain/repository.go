package domain

import (
	"context"
	"time"
)

// CampaignRepository handles campaign persistence.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	ListAll(ctx context.Context) ([]Campaign, error)
	ListByOwner(ctx context.Context, userID string) ([]Campaign, error)
	Update(ctx context.Context, id string, upd CampaignUpdate) (*Campaign, error)
}

// ContributionRepository handles contribution persistence. There is no delete.
type ContributionRepository interface {
	Create(ctx context.Context, contribution *Contribution) error
	GetByID(ctx context.Context, id string) (*Contribution, error)
	// TransitionStatus moves a contribution from one status to another and
	// fails with ErrInvalidTransition when the stored status is no longer from.
	TransitionStatus(ctx context.Context, id string, from, to ContributionStatus, transactionNSU *string) (*Contribution, error)
	AttachOrderNSU(ctx context.Context, id, orderNSU string) error
	ListCompletedByCampaigns(ctx context.Context, campaignIDs []string) ([]Contribution, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Contribution, error)
}
