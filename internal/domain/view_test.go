package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func contribution(campaignID, amount string, status ContributionStatus) Contribution {
	return Contribution{CampaignID: campaignID, Amount: decimal.RequireFromString(amount), Status: status}
}

func TestRaisedAmountCountsOnlyCompleted(t *testing.T) {
	items := []Contribution{
		contribution("c1", "100", ContributionCompleted),
		contribution("c1", "25.50", ContributionCompleted),
		contribution("c1", "999", ContributionPending),
		contribution("c1", "40", ContributionFailed),
	}
	got := RaisedAmount(items)
	if !got.Equal(decimal.RequireFromString("125.50")) {
		t.Fatalf("RaisedAmount = %s, want 125.50", got)
	}
	if !RaisedAmount(nil).IsZero() {
		t.Fatalf("RaisedAmount(nil) should be zero")
	}
}

func TestNewCampaignViewFiltersAndIsStable(t *testing.T) {
	campaign := Campaign{ID: "c1", Goal: decimal.NewFromInt(1000)}
	items := []Contribution{
		contribution("c1", "100", ContributionPending),
		contribution("c2", "70", ContributionCompleted),
	}

	view := NewCampaignView(campaign, items)
	if !view.Current.IsZero() {
		t.Fatalf("pending contribution counted: current = %s", view.Current)
	}
	if len(view.Contributions) != 0 {
		t.Fatalf("expected no completed contributions, got %d", len(view.Contributions))
	}

	items[0].Status = ContributionCompleted
	first := NewCampaignView(campaign, items)
	second := NewCampaignView(campaign, items)
	if !first.Current.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("current = %s, want 100", first.Current)
	}
	if !first.Current.Equal(second.Current) {
		t.Fatalf("repeated views disagree: %s vs %s", first.Current, second.Current)
	}
}
