package handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/service"
)

type campaignRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Goal        json.RawMessage `json:"goal"`
	Handle      string          `json:"handle"`
	UserID      string          `json:"userId"`
	CheckoutURL string          `json:"checkoutUrl"`
}

func (req campaignRequest) input() domain.CampaignInput {
	return domain.CampaignInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Goal:        string(req.Goal),
		Handle:      req.Handle,
		UserID:      req.UserID,
		CheckoutURL: req.CheckoutURL,
	}
}

type contributionRequest struct {
	CampaignID       string          `json:"campaignId"`
	Amount           json.RawMessage `json:"amount"`
	ContributorName  string          `json:"contributorName"`
	ContributorEmail string          `json:"contributorEmail"`
}

type statusRequest struct {
	Status         string  `json:"status"`
	TransactionNSU *string `json:"transactionNsu"`
}

type campaignResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Images      []string    `json:"images"`
	Goal        json.Number `json:"goal"`
	Handle      string      `json:"handle"`
	UserID      string      `json:"userId"`
	CheckoutURL *string     `json:"checkoutUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type campaignViewResponse struct {
	campaignResponse
	Current       json.Number            `json:"current"`
	Contributions []contributionResponse `json:"contributions"`
}

type contributionResponse struct {
	ID               string      `json:"id"`
	CampaignID       string      `json:"campaignId"`
	Amount           json.Number `json:"amount"`
	ContributorName  string      `json:"contributorName"`
	ContributorEmail string      `json:"contributorEmail"`
	Status           string      `json:"status"`
	TransactionNSU   *string     `json:"transactionNsu"`
	OrderNSU         *string     `json:"orderNsu"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type contributionDetailResponse struct {
	contributionResponse
	Campaign campaignViewResponse `json:"campaign"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	var checkoutURL *string
	if c.CheckoutURL != "" {
		u := c.CheckoutURL
		checkoutURL = &u
	}
	return campaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Images:      images,
		Goal:        number(c.Goal),
		Handle:      c.Handle,
		UserID:      c.UserID,
		CheckoutURL: checkoutURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCampaignView(v domain.CampaignView) campaignViewResponse {
	contributions := make([]contributionResponse, 0, len(v.Contributions))
	for _, c := range v.Contributions {
		contributions = append(contributions, toContributionResponse(c))
	}
	return campaignViewResponse{
		campaignResponse: toCampaignResponse(v.Campaign),
		Current:          number(v.Current),
		Contributions:    contributions,
	}
}

func toCampaignViews(views []domain.CampaignView) []campaignViewResponse {
	out := make([]campaignViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCampaignView(v))
	}
	return out
}

func toContributionResponse(c domain.Contribution) contributionResponse {
	return contributionResponse{
		ID:               c.ID,
		CampaignID:       c.CampaignID,
		Amount:           number(c.Amount),
		ContributorName:  c.ContributorName,
		ContributorEmail: c.ContributorEmail,
		Status:           string(c.Status),
		TransactionNSU:   c.TransactionNSU,
		OrderNSU:         c.OrderNSU,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toContributionDetail(d service.ContributionDetail) contributionDetailResponse {
	return contributionDetailResponse{
		contributionResponse: toContributionResponse(d.Contribution),
		Campaign:             toCampaignView(d.Campaign),
	}
}
