// Package saga runs the contribution flow: record a pending contribution,
// obtain a checkout link, have the payment runtime confirm it, then mark the
// contribution completed. Steps are not compensated; a failure reports the
// last state reached so callers can tell what was left behind.
package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/providers/infinitepay"
)

// State is a step of the contribution saga.
type State string

const (
	StateInitiated        State = "initiated"
	StatePendingRecorded  State = "pending_recorded"
	StateCheckoutObtained State = "checkout_obtained"
	StatePaymentConfirmed State = "payment_confirmed"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// ContributionPort is the contribution store as seen by the saga.
type ContributionPort interface {
	CreateContribution(ctx context.Context, in domain.ContributionInput) (*domain.Contribution, error)
	CompleteContribution(ctx context.Context, id, transactionNSU string) (*domain.Contribution, error)
}

// CheckoutPort obtains a checkout link. contributionID lets implementations
// record the order reference against the pending record.
type CheckoutPort interface {
	CreateCheckoutLink(ctx context.Context, contributionID string, req infinitepay.CheckoutRequest) (*infinitepay.CheckoutLink, error)
}

// Intent is what the contributor submits.
type Intent struct {
	CampaignID       string
	CampaignName     string
	Handle           string
	Amount           decimal.Decimal
	ContributorName  string
	ContributorEmail string
	ContributorPhone string
	Locale           string
}

// Outcome accumulates what each step produced.
type Outcome struct {
	State          State  `json:"state"`
	ContributionID string `json:"contributionId,omitempty"`
	OrderNSU       string `json:"orderNsu,omitempty"`
	CheckoutURL    string `json:"checkoutUrl,omitempty"`
	TransactionNSU string `json:"transactionNsu,omitempty"`
	ReceiptURL     string `json:"receiptUrl,omitempty"`
}

// Error reports a failed run. State is the last state that was reached.
type Error struct {
	State          State
	ContributionID string
	Err            error
}

func (e *Error) Error() string {
	if e.ContributionID == "" {
		return fmt.Sprintf("contribution saga failed after %s: %v", e.State, e.Err)
	}
	return fmt.Sprintf("contribution saga failed after %s (contribution %s): %v", e.State, e.ContributionID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LeftPending reports whether the failure left a pending contribution behind.
func (e *Error) LeftPending() bool {
	return e.ContributionID != "" && e.State != StateCompleted
}

// Config wires a Saga.
type Config struct {
	Contributions ContributionPort
	Checkout      CheckoutPort
	Runtime       *infinitepay.RuntimeHolder
	OrderRefs     *infinitepay.OrderRefs
	RuntimeWait   time.Duration
	Logger        *infra.Logger
	// Observe, when set, is called on every state change.
	Observe func(State, Outcome)
}

// Saga coordinates one contribution at a time per Run call.
type Saga struct {
	contributions ContributionPort
	checkout      CheckoutPort
	runtime       *infinitepay.RuntimeHolder
	refs          *infinitepay.OrderRefs
	runtimeWait   time.Duration
	logger        *infra.Logger
	observe       func(State, Outcome)
}

func New(cfg Config) *Saga {
	logger := cfg.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	refs := cfg.OrderRefs
	if refs == nil {
		refs = infinitepay.NewOrderRefs(nil)
	}
	wait := cfg.RuntimeWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	runtime := cfg.Runtime
	if runtime == nil {
		runtime = infinitepay.NewRuntimeHolder()
	}
	return &Saga{
		contributions: cfg.Contributions,
		checkout:      cfg.Checkout,
		runtime:       runtime,
		refs:          refs,
		runtimeWait:   wait,
		logger:        logger,
		observe:       cfg.Observe,
	}
}

// Run executes the saga once. No step is retried and nothing is rolled back.
func (s *Saga) Run(ctx context.Context, in Intent) (*Outcome, error) {
	out := &Outcome{}
	s.enter(out, StateInitiated)

	if err := in.validate(); err != nil {
		return out, s.fail(out, err)
	}

	contribution, err := s.contributions.CreateContribution(ctx, domain.ContributionInput{
		CampaignID:       in.CampaignID,
		Amount:           in.Amount.String(),
		ContributorName:  in.ContributorName,
		ContributorEmail: in.ContributorEmail,
	})
	if err != nil {
		return out, s.fail(out, fmt.Errorf("create contribution: %w", err))
	}
	out.ContributionID = contribution.ID
	s.enter(out, StatePendingRecorded)

	out.OrderNSU = s.refs.Next()
	req := infinitepay.CheckoutRequest{
		Handle:   in.Handle,
		OrderNSU: out.OrderNSU,
		Items:    []infinitepay.Item{infinitepay.ContributionItem(in.Amount, infinitepay.LineDescription(in.Locale, in.CampaignName))},
		Customer: &infinitepay.Customer{
			Name:        in.ContributorName,
			Email:       in.ContributorEmail,
			PhoneNumber: in.ContributorPhone,
		},
	}
	link, err := s.checkout.CreateCheckoutLink(ctx, contribution.ID, req)
	if err != nil {
		return out, s.fail(out, fmt.Errorf("create checkout: %w", err))
	}
	out.CheckoutURL = link.URL
	s.enter(out, StateCheckoutObtained)

	rt, err := s.runtime.Await(ctx, s.runtimeWait)
	if err != nil {
		return out, s.fail(out, err)
	}

	payment, err := rt.SendCheckoutPayment(ctx, link.URL)
	if err != nil {
		return out, s.fail(out, fmt.Errorf("confirm payment: %w", err))
	}
	if payment == nil || strings.TrimSpace(payment.TransactionNSU) == "" {
		return out, s.fail(out, errors.New("confirm payment: runtime returned no transaction reference"))
	}
	out.TransactionNSU = payment.TransactionNSU
	out.ReceiptURL = payment.ReceiptURL
	s.enter(out, StatePaymentConfirmed)

	if _, err := s.contributions.CompleteContribution(ctx, contribution.ID, payment.TransactionNSU); err != nil {
		s.logger.Error().
			Err(err).
			Str("contribution_id", contribution.ID).
			Str("transaction_nsu", payment.TransactionNSU).
			Msg("payment captured but contribution not completed")
		return out, s.fail(out, fmt.Errorf("complete contribution: %w", err))
	}
	s.enter(out, StateCompleted)
	return out, nil
}

func (s *Saga) enter(out *Outcome, state State) {
	out.State = state
	s.logger.Debug().
		Str("state", string(state)).
		Str("contribution_id", out.ContributionID).
		Msg("contribution saga")
	if s.observe != nil {
		s.observe(state, *out)
	}
}

func (s *Saga) fail(out *Outcome, err error) error {
	sagaErr := &Error{State: out.State, ContributionID: out.ContributionID, Err: err}
	s.logger.Warn().
		Err(err).
		Str("state", string(out.State)).
		Str("contribution_id", out.ContributionID).
		Msg("contribution saga aborted")
	s.enter(out, StateFailed)
	return sagaErr
}

func (in Intent) validate() error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if strings.TrimSpace(in.CampaignID) == "" {
		return fmt.Errorf("%w: campaign is required", domain.ErrValidation)
	}
	if domain.NormalizeHandle(in.Handle) == "" {
		return fmt.Errorf("%w: campaign handle is required", domain.ErrValidation)
	}
	return nil
}
