package infinitepay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// PaymentMethod is the card mode of a tap payment.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
)

// UserData is the identity reported by the host.
type UserData struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

// DevUser is returned when no host runtime is present.
var DevUser = UserData{ID: 1, Name: "Usuário de Teste", Handle: "teste", Role: "user"}

// TapPaymentParams requests a direct tap-to-pay charge. Amount is in cents.
type TapPaymentParams struct {
	Amount        int64         `json:"amount"`
	OrderNSU      string        `json:"orderNsu"`
	Installments  int           `json:"installments"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Validate enforces debit = 1 installment and credit = 1..12.
func (p TapPaymentParams) Validate() error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if p.OrderNSU == "" {
		return fmt.Errorf("%w: orderNsu is required", domain.ErrValidation)
	}
	switch p.PaymentMethod {
	case PaymentDebit:
		if p.Installments != 1 {
			return fmt.Errorf("%w: debit payments take exactly one installment", domain.ErrValidation)
		}
	case PaymentCredit:
		if p.Installments < 1 || p.Installments > 12 {
			return fmt.Errorf("%w: credit installments must be between 1 and 12", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, p.PaymentMethod)
	}
	return nil
}

// TapPaymentData is the result of a tap payment.
type TapPaymentData struct {
	TransactionNSU string `json:"transactionNsu"`
	Amount         int64  `json:"amount"`
	PaymentMethod  string `json:"paymentMethod"`
}

// CheckoutPaymentData is the confirmation of a checkout-link payment.
type CheckoutPaymentData struct {
	TransactionNSU string `json:"transactionNsu"`
	ReceiptURL     string `json:"receiptUrl"`
	Amount         int64  `json:"amount"`
}

// Runtime is the capability the host injects: identity, tap payments and
// confirmation of a previously created checkout URL. The host's
// success/error envelope maps onto the (value, error) returns.
type Runtime interface {
	UserData(ctx context.Context) (*UserData, error)
	ReceiveTapPayment(ctx context.Context, params TapPaymentParams) (*TapPaymentData, error)
	SendCheckoutPayment(ctx context.Context, checkoutURL string) (*CheckoutPaymentData, error)
}

// RuntimeHolder receives the runtime whenever the host gets around to
// injecting it; callers wait on it with a deadline.
type RuntimeHolder struct {
	once  sync.Once
	ready chan struct{}
	rt    Runtime
}

func NewRuntimeHolder() *RuntimeHolder {
	return &RuntimeHolder{ready: make(chan struct{})}
}

// Inject stores rt. Only the first call has an effect; it reports whether it won.
func (h *RuntimeHolder) Inject(rt Runtime) bool {
	if rt == nil {
		return false
	}
	injected := false
	h.once.Do(func() {
		h.rt = rt
		close(h.ready)
		injected = true
	})
	return injected
}

// Await blocks until the runtime is injected, the timeout elapses or ctx ends.
// Timeout and cancellation both surface as domain.ErrUnavailable.
func (h *RuntimeHolder) Await(ctx context.Context, timeout time.Duration) (Runtime, error) {
	select {
	case <-h.ready:
		return h.rt, nil
	default:
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: not injected", domain.ErrUnavailable)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.ready:
		return h.rt, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: not injected within %s", domain.ErrUnavailable, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, ctx.Err())
	}
}

// CurrentUser resolves the host identity, falling back to DevUser when the
// runtime never shows up or refuses the call.
func CurrentUser(ctx context.Context, h *RuntimeHolder, timeout time.Duration, logger *infra.Logger) UserData {
	if logger == nil {
		logger = infra.NopLogger()
	}
	rt, err := h.Await(ctx, timeout)
	if err != nil {
		logger.Warn().Err(err).Msg("payment runtime not available, using development user")
		return DevUser
	}
	user, err := rt.UserData(ctx)
	if err != nil || user == nil {
		logger.Warn().Err(err).Msg("failed to load user data, using development user")
		return DevUser
	}
	return *user
}
