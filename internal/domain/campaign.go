package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a fundraising effort owned by a single user.
type Campaign struct {
	ID          string
	Name        string
	Description string
	Images      []string
	Goal        decimal.Decimal
	Handle      string
	UserID      string
	CheckoutURL string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CampaignInput carries the owner-editable fields as received from a client.
type CampaignInput struct {
	Name        string
	Description string
	Images      []string
	Goal        string
	Handle      string
	UserID      string
	CheckoutURL string
}

// CampaignUpdate holds validated values for an update.
type CampaignUpdate struct {
	Name        string
	Description string
	Images      []string
	Goal        decimal.Decimal
	Handle      string
}

// NewCampaign validates the input and builds a campaign ready to be persisted.
func NewCampaign(in CampaignInput) (*Campaign, error) {
	upd, err := in.Validate()
	if err != nil {
		return nil, err
	}
	return &Campaign{
		Name:        upd.Name,
		Description: upd.Description,
		Images:      upd.Images,
		Goal:        upd.Goal,
		Handle:      upd.Handle,
		UserID:      strings.TrimSpace(in.UserID),
		CheckoutURL: strings.TrimSpace(in.CheckoutURL),
	}, nil
}

// Validate checks the mutable fields and returns their normalized form.
func (in CampaignInput) Validate() (CampaignUpdate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CampaignUpdate{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	goal, err := ParsePositiveAmount("goal", in.Goal)
	if err != nil {
		return CampaignUpdate{}, err
	}
	handle := NormalizeHandle(in.Handle)
	if handle == "" {
		return CampaignUpdate{}, fmt.Errorf("%w: handle is required", ErrValidation)
	}
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	return CampaignUpdate{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Images:      images,
		Goal:        goal,
		Handle:      handle,
	}, nil
}

// NormalizeHandle strips whitespace and the leading "$" users tend to type.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "$")
}

// OwnedBy reports whether userID owns the campaign.
func (c Campaign) OwnedBy(userID string) bool {
	return c.UserID != "" && c.UserID == userID
}
