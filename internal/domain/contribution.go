package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus enumerates contribution lifecycle states.
type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionCompleted ContributionStatus = "completed"
	ContributionFailed    ContributionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionPending, ContributionCompleted, ContributionFailed:
		return true
	}
	return false
}

// Contribution is a single pledge toward a campaign.
type Contribution struct {
	ID               string
	CampaignID       string
	Amount           decimal.Decimal
	ContributorName  string
	ContributorEmail string
	Status           ContributionStatus
	TransactionNSU   *string
	OrderNSU         *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ContributionInput is the unvalidated form submitted by a contributor.
type ContributionInput struct {
	CampaignID       string
	Amount           string
	ContributorName  string
	ContributorEmail string
}

// NewContribution validates the input and returns a pending contribution.
// Campaign existence is checked by the store.
func NewContribution(in ContributionInput) (*Contribution, error) {
	campaignID := strings.TrimSpace(in.CampaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("%w: campaignId is required", ErrValidation)
	}
	amount, err := ParsePositiveAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.ContributorName)
	if name == "" {
		return nil, fmt.Errorf("%w: contributorName is required", ErrValidation)
	}
	email := strings.TrimSpace(in.ContributorEmail)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: contributorEmail is invalid", ErrValidation)
	}
	return &Contribution{
		CampaignID:       campaignID,
		Amount:           amount,
		ContributorName:  name,
		ContributorEmail: email,
		Status:           ContributionPending,
	}, nil
}

// CheckTransition enforces pending -> completed|failed. Re-applying a terminal
// status with the same transaction reference is accepted as a replay.
func (c Contribution) CheckTransition(next ContributionStatus, transactionNSU *string) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	if c.Status == ContributionPending && next != ContributionPending {
		return nil
	}
	if c.Status == next && c.Status != ContributionPending && sameRef(c.TransactionNSU, transactionNSU) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
}

// CheckSettlement guards a manual completion with a provider transaction
// reference. Unlike CheckTransition it also revives a failed contribution,
// since expiry can run before a captured payment is reconciled.
func (c Contribution) CheckSettlement(transactionNSU string) error {
	if strings.TrimSpace(transactionNSU) == "" {
		return fmt.Errorf("%w: transactionNsu is required to settle", ErrValidation)
	}
	switch c.Status {
	case ContributionPending, ContributionFailed:
		return nil
	case ContributionCompleted:
		if c.TransactionNSU != nil && *c.TransactionNSU == transactionNSU {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, ContributionCompleted)
}

// IsReplay reports whether applying next would leave the record unchanged.
func (c Contribution) IsReplay(next ContributionStatus, transactionNSU *string) bool {
	return c.Status == next && sameRef(c.TransactionNSU, transactionNSU)
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
