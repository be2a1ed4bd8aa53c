package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowdfund/internal/adapter/memory"
	"crowdfund/internal/domain"
	"crowdfund/internal/service"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSweepExpiresOnlyStalePending(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := memory.NewStore(clk.now)
	campaigns := service.NewCampaignService(store.Campaigns(), store.Contributions(), nil)
	contributions := service.NewContributionService(store.Contributions(), campaigns, nil)

	campaign, err := campaigns.Create(ctx, domain.CampaignInput{Name: "Roof", Goal: "300", Handle: "roof"})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	newContribution := func() *domain.Contribution {
		c, err := contributions.Create(ctx, domain.ContributionInput{
			CampaignID: campaign.ID, Amount: "10", ContributorName: "Ana", ContributorEmail: "ana@example.com",
		})
		if err != nil {
			t.Fatalf("create contribution: %v", err)
		}
		return c
	}

	old := newContribution()
	settled := newContribution()
	nsu := "TX-1"
	if _, err := contributions.UpdateStatus(ctx, settled.ID, domain.ContributionCompleted, &nsu); err != nil {
		t.Fatalf("complete: %v", err)
	}
	clk.t = clk.t.Add(23 * time.Hour)
	fresh := newContribution()
	clk.t = clk.t.Add(2 * time.Hour)

	sweeper := NewSweeper(store.Contributions(), contributions, Options{TTL: 24 * time.Hour, Now: clk.now})
	res, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Scanned != 1 || res.Expired != 1 {
		t.Fatalf("result = %+v, want one expired", res)
	}

	statuses := map[string]domain.ContributionStatus{
		old.ID:     domain.ContributionFailed,
		settled.ID: domain.ContributionCompleted,
		fresh.ID:   domain.ContributionPending,
	}
	for id, want := range statuses {
		got, err := contributions.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got.Contribution.Status != want {
			t.Fatalf("%s status = %s, want %s", id, got.Contribution.Status, want)
		}
	}

	view, _ := campaigns.Get(ctx, campaign.ID)
	if !view.Current.Equal(settled.Amount) {
		t.Fatalf("current = %s, want %s", view.Current, settled.Amount)
	}
}

type fakeLister struct {
	items []domain.Contribution
	err   error
}

func (f fakeLister) ListStalePending(context.Context, time.Time, int) ([]domain.Contribution, error) {
	return f.items, f.err
}

type fakeUpdater struct {
	errs  map[string]error
	calls []string
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, id string, status domain.ContributionStatus, _ *string) (*domain.Contribution, error) {
	f.calls = append(f.calls, id+":"+string(status))
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return &domain.Contribution{ID: id, Status: status}, nil
}

func TestSweepSkipsRacedContributions(t *testing.T) {
	lister := fakeLister{items: []domain.Contribution{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	updater := &fakeUpdater{errs: map[string]error{
		"a": domain.ErrInvalidTransition,
		"b": domain.ErrNotFound,
	}}
	res, err := NewSweeper(lister, updater, Options{}).Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Scanned != 3 || res.Expired != 1 || res.Skipped != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(updater.calls) != 3 || updater.calls[2] != "c:failed" {
		t.Fatalf("calls = %v", updater.calls)
	}
}

func TestSweepPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewSweeper(fakeLister{err: boom}, &fakeUpdater{}, Options{}).Sweep(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	updater := &fakeUpdater{errs: map[string]error{"a": boom}}
	if _, err := NewSweeper(fakeLister{items: []domain.Contribution{{ID: "a"}, {ID: "b"}}}, updater, Options{}).Sweep(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(updater.calls) != 1 {
		t.Fatalf("sweep should stop at the first unexpected error, calls = %v", updater.calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	updater := &fakeUpdater{}
	done := make(chan error, 1)
	go func() {
		done <- NewSweeper(fakeLister{}, updater, Options{}).Run(ctx, time.Hour)
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}
}

func TestSettleAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := memory.NewStore(clk.now)
	campaigns := service.NewCampaignService(store.Campaigns(), store.Contributions(), nil)
	contributions := service.NewContributionService(store.Contributions(), campaigns, nil)

	campaign, _ := campaigns.Create(ctx, domain.CampaignInput{Name: "Roof", Goal: "300", Handle: "roof"})
	c, err := contributions.Create(ctx, domain.ContributionInput{
		CampaignID: campaign.ID, Amount: "40", ContributorName: "Ana", ContributorEmail: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create contribution: %v", err)
	}
	if err := contributions.AttachOrder(ctx, c.ID, "CONTRIBUTION_1"); err != nil {
		t.Fatalf("attach order: %v", err)
	}

	clk.t = clk.t.Add(48 * time.Hour)
	sweeper := NewSweeper(store.Contributions(), contributions, Options{TTL: 24 * time.Hour, Now: clk.now})
	if res, err := sweeper.Sweep(ctx); err != nil || res.Expired != 1 {
		t.Fatalf("sweep = %+v, %v", res, err)
	}

	nsu := "captured-txn"
	if _, err := contributions.UpdateStatus(ctx, c.ID, domain.ContributionCompleted, &nsu); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("status patch after expiry err = %v, want ErrInvalidTransition", err)
	}
	settled, err := contributions.Settle(ctx, c.ID, nsu)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != domain.ContributionCompleted || settled.TransactionNSU == nil || *settled.TransactionNSU != nsu {
		t.Fatalf("settled = %+v", settled)
	}
	if _, err := contributions.Settle(ctx, c.ID, nsu); err != nil {
		t.Fatalf("settle replay: %v", err)
	}
	if _, err := contributions.Settle(ctx, c.ID, "other-txn"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("settle with another ref err = %v, want ErrInvalidTransition", err)
	}

	view, _ := campaigns.Get(ctx, campaign.ID)
	if !view.Current.Equal(c.Amount) {
		t.Fatalf("current = %s, want %s", view.Current, c.Amount)
	}
}
