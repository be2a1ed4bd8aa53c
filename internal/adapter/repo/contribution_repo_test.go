package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/sqlinline"
	"crowdfund/internal/testutil"
)

func contributionRow(id, campaignID, amount, status string, nsu any) []any {
	return []any{id, campaignID, amount, "Ana", "ana@example.com", status, nsu, nil, fixedTime, fixedTime}
}

func TestContributionCreateMissingCampaign(t *testing.T) {
	fake := &testutil.FakeSQL{}
	repo := NewContributionRepository(fake)

	c := &domain.Contribution{CampaignID: uuid.NewString(), Amount: decimal.NewFromInt(10)}
	err := repo.Create(context.Background(), c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if c.ID != "" {
		t.Fatalf("id assigned despite failure: %q", c.ID)
	}
}

func TestContributionCreateRejectsNonPositiveBeforeSQL(t *testing.T) {
	fake := &testutil.FakeSQL{}
	repo := NewContributionRepository(fake)

	err := repo.Create(context.Background(), &domain.Contribution{CampaignID: uuid.NewString(), Amount: decimal.NewFromInt(-5)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("expected no SQL, got %d calls", len(fake.Calls))
	}
}

func TestContributionCreatePending(t *testing.T) {
	fake := &testutil.FakeSQL{
		OnQueryRow: func(query string, args []any) pgx.Row {
			if query != sqlinline.QInsertContribution {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[2] != "100" {
				t.Fatalf("amount arg = %#v", args[2])
			}
			return testutil.ValuesRow(fixedTime, fixedTime)
		},
	}
	repo := NewContributionRepository(fake)

	c := &domain.Contribution{CampaignID: uuid.NewString(), Amount: decimal.NewFromInt(100), Status: domain.ContributionCompleted}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != domain.ContributionPending || c.ID == "" {
		t.Fatalf("unexpected contribution: %+v", c)
	}
}

func TestContributionTransitionLostRace(t *testing.T) {
	repo := NewContributionRepository(&testutil.FakeSQL{})

	nsu := "nsu-1"
	_, err := repo.TransitionStatus(context.Background(), uuid.NewString(), domain.ContributionPending, domain.ContributionCompleted, &nsu)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestContributionTransitionScansResult(t *testing.T) {
	id, campaignID := uuid.NewString(), uuid.NewString()
	fake := &testutil.FakeSQL{
		OnQueryRow: func(query string, args []any) pgx.Row {
			if args[1] != "completed" || args[3] != "pending" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return testutil.ValuesRow(contributionRow(id, campaignID, "99.90", "completed", "nsu-1")...)
		},
	}
	repo := NewContributionRepository(fake)

	nsu := "nsu-1"
	c, err := repo.TransitionStatus(context.Background(), id, domain.ContributionPending, domain.ContributionCompleted, &nsu)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if c.Status != domain.ContributionCompleted || c.TransactionNSU == nil || *c.TransactionNSU != "nsu-1" {
		t.Fatalf("unexpected contribution: %+v", c)
	}
	if c.OrderNSU != nil {
		t.Fatalf("order nsu should be nil, got %v", *c.OrderNSU)
	}
	if !c.Amount.Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("amount = %s", c.Amount)
	}
}

func TestContributionAttachOrderNSU(t *testing.T) {
	fake := &testutil.FakeSQL{
		OnExec: func(query string, args []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	repo := NewContributionRepository(fake)

	if err := repo.AttachOrderNSU(context.Background(), uuid.NewString(), "CONTRIBUTION_X"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCompletedSkipsQueryWithoutIDs(t *testing.T) {
	fake := &testutil.FakeSQL{}
	repo := NewContributionRepository(fake)

	items, err := repo.ListCompletedByCampaigns(context.Background(), []string{"bogus"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 || len(fake.Calls) != 0 {
		t.Fatalf("expected no query, got %d calls", len(fake.Calls))
	}
}
