package infinitepay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MockRuntime stands in for the host runtime in development and tests. Every
// payment succeeds unless a failure is configured.
type MockRuntime struct {
	mu       sync.Mutex
	refs     *OrderRefs
	User     UserData
	Amount   int64
	FailWith error
	Sent     []string
}

// NewMockRuntime returns a mock that reports DevUser.
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{refs: NewOrderRefs(time.Now), User: DevUser}
}

func (m *MockRuntime) UserData(ctx context.Context) (*UserData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	user := m.User
	return &user, nil
}

func (m *MockRuntime) ReceiveTapPayment(ctx context.Context, params TapPaymentParams) (*TapPaymentData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return &TapPaymentData{
		TransactionNSU: m.nextTransaction(),
		Amount:         params.Amount,
		PaymentMethod:  string(params.PaymentMethod),
	}, nil
}

func (m *MockRuntime) SendCheckoutPayment(ctx context.Context, checkoutURL string) (*CheckoutPaymentData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(checkoutURL) == "" {
		return nil, errors.New("checkout url is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, checkoutURL)
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	nsu := m.nextTransaction()
	return &CheckoutPaymentData{
		TransactionNSU: nsu,
		ReceiptURL:     "https://receipts.invalid/" + nsu,
		Amount:         m.Amount,
	}, nil
}

func (m *MockRuntime) nextTransaction() string {
	return "MOCK_" + strings.TrimPrefix(m.refs.Next(), OrderPrefix)
}

var _ Runtime = (*MockRuntime)(nil)
