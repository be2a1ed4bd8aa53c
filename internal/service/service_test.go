package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"crowdfund/internal/adapter/memory"
	"crowdfund/internal/domain"
)

func newServices(t *testing.T) (*CampaignService, *ContributionService) {
	t.Helper()
	store := memory.NewStore(nil)
	campaigns := NewCampaignService(store.Campaigns(), store.Contributions(), nil)
	return campaigns, NewContributionService(store.Contributions(), campaigns, nil)
}

func TestContributionCompletionDrivesCurrent(t *testing.T) {
	ctx := context.Background()
	campaigns, contributions := newServices(t)

	campaign, err := campaigns.Create(ctx, domain.CampaignInput{Name: "Library", Goal: "1000", Handle: "lib", UserID: "u1"})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	contribution, err := contributions.Create(ctx, domain.ContributionInput{
		CampaignID: campaign.ID, Amount: "100", ContributorName: "Ana", ContributorEmail: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create contribution: %v", err)
	}

	view, err := campaigns.Get(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !view.Current.IsZero() {
		t.Fatalf("pending contribution counted: %s", view.Current)
	}

	nsu := "txn-1"
	if _, err := contributions.UpdateStatus(ctx, contribution.ID, domain.ContributionCompleted, &nsu); err != nil {
		t.Fatalf("complete: %v", err)
	}

	first, _ := campaigns.Get(ctx, campaign.ID)
	second, _ := campaigns.Get(ctx, campaign.ID)
	if !first.Current.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("current = %s, want 100", first.Current)
	}
	if !first.Current.Equal(second.Current) {
		t.Fatalf("repeated fetch disagrees: %s vs %s", first.Current, second.Current)
	}
	if len(first.Contributions) != 1 {
		t.Fatalf("expected one completed contribution, got %d", len(first.Contributions))
	}
}

func TestNegativeContributionCreatesNothing(t *testing.T) {
	ctx := context.Background()
	campaigns, contributions := newServices(t)
	campaign, _ := campaigns.Create(ctx, domain.CampaignInput{Name: "x", Goal: "10", Handle: "h"})

	_, err := contributions.Create(ctx, domain.ContributionInput{
		CampaignID: campaign.ID, Amount: "-5", ContributorName: "Ana", ContributorEmail: "ana@example.com",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	view, _ := campaigns.Get(ctx, campaign.ID)
	if len(view.Contributions) != 0 || !view.Current.IsZero() {
		t.Fatalf("unexpected state after rejected contribution: %+v", view)
	}
}

func TestUpdateStatusReplayAndGuard(t *testing.T) {
	ctx := context.Background()
	campaigns, contributions := newServices(t)
	campaign, _ := campaigns.Create(ctx, domain.CampaignInput{Name: "x", Goal: "10", Handle: "h"})
	c, _ := contributions.Create(ctx, domain.ContributionInput{
		CampaignID: campaign.ID, Amount: "5", ContributorName: "Ana", ContributorEmail: "ana@example.com",
	})

	nsu := "txn-9"
	if _, err := contributions.UpdateStatus(ctx, c.ID, domain.ContributionCompleted, &nsu); err != nil {
		t.Fatalf("complete: %v", err)
	}
	replayed, err := contributions.UpdateStatus(ctx, c.ID, domain.ContributionCompleted, &nsu)
	if err != nil {
		t.Fatalf("replay should succeed: %v", err)
	}
	if replayed.Status != domain.ContributionCompleted {
		t.Fatalf("replay status = %s", replayed.Status)
	}
	if _, err := contributions.UpdateStatus(ctx, c.ID, domain.ContributionPending, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed -> pending err = %v, want ErrInvalidTransition", err)
	}
	if _, err := contributions.UpdateStatus(ctx, "missing", domain.ContributionCompleted, &nsu); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
}

func TestUpdateCampaignOwnership(t *testing.T) {
	ctx := context.Background()
	campaigns, _ := newServices(t)
	campaign, _ := campaigns.Create(ctx, domain.CampaignInput{Name: "x", Goal: "10", Handle: "h", UserID: "owner"})

	in := domain.CampaignInput{Name: "renamed", Goal: "20", Handle: "h2", Images: []string{"https://img/1.png"}}
	if _, err := campaigns.Update(ctx, campaign.ID, "intruder", in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	updated, err := campaigns.Update(ctx, campaign.ID, "owner", in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "renamed" || !updated.Goal.Equal(decimal.NewFromInt(20)) || len(updated.Images) != 1 {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if _, err := campaigns.Update(ctx, "missing", "", in); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
}

func TestContributionDetailIncludesCampaign(t *testing.T) {
	ctx := context.Background()
	campaigns, contributions := newServices(t)
	campaign, _ := campaigns.Create(ctx, domain.CampaignInput{Name: "Parent", Goal: "10", Handle: "h"})
	c, _ := contributions.Create(ctx, domain.ContributionInput{
		CampaignID: campaign.ID, Amount: "5", ContributorName: "Ana", ContributorEmail: "ana@example.com",
	})

	detail, err := contributions.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Campaign.Campaign.Name != "Parent" {
		t.Fatalf("unexpected parent: %+v", detail.Campaign)
	}
}

func TestAmountsMustFitStoredPrecision(t *testing.T) {
	ctx := context.Background()
	campaigns, contributions := newServices(t)

	for _, goal := range []string{"0.001", "10.555", "1e13"} {
		if _, err := campaigns.Create(ctx, domain.CampaignInput{Name: "x", Goal: goal, Handle: "h"}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("goal %s err = %v, want ErrValidation", goal, err)
		}
	}

	campaign, err := campaigns.Create(ctx, domain.CampaignInput{Name: "x", Goal: "10.55", Handle: "h"})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	for _, amount := range []string{"0.004", "10.555", "1e13"} {
		_, err := contributions.Create(ctx, domain.ContributionInput{
			CampaignID: campaign.ID, Amount: amount, ContributorName: "Ana", ContributorEmail: "ana@example.com",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("amount %s err = %v, want ErrValidation", amount, err)
		}
	}

	view, _ := campaigns.Get(ctx, campaign.ID)
	if !view.Campaign.Goal.Equal(decimal.RequireFromString("10.55")) || len(view.Contributions) != 0 {
		t.Fatalf("unexpected state after rejected amounts: %+v", view)
	}
}
