package domain

import "github.com/shopspring/decimal"

// CampaignView is the read projection of a campaign: the stored record plus the
// raised amount computed from its completed contributions at read time.
type CampaignView struct {
	Campaign      Campaign
	Current       decimal.Decimal
	Contributions []Contribution
}

// NewCampaignView keeps only completed contributions and derives Current from them.
func NewCampaignView(c Campaign, contributions []Contribution) CampaignView {
	completed := make([]Contribution, 0, len(contributions))
	for _, contrib := range contributions {
		if contrib.CampaignID == c.ID && contrib.Status == ContributionCompleted {
			completed = append(completed, contrib)
		}
	}
	return CampaignView{Campaign: c, Current: RaisedAmount(completed), Contributions: completed}
}

// RaisedAmount sums the amounts of completed contributions; other statuses are ignored.
func RaisedAmount(contributions []Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		if c.Status != ContributionCompleted {
			continue
		}
		total = total.Add(c.Amount)
	}
	return total
}
