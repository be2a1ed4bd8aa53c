// Package infinitepay talks to the InfinitePay checkout API and models the
// payment runtime that a MiniApp host injects into the client.
package infinitepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

// DefaultCheckoutURL is the public checkout-link endpoint.
const DefaultCheckoutURL = "https://api.infinitepay.io/invoices/public/checkout/links"

// Options configures the checkout client.
type Options struct {
	CheckoutURL    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client creates checkout links. It performs exactly one attempt per call.
type Client struct {
	checkoutURL string
	httpClient  *http.Client
	logger      *infra.Logger
}

// Item is a checkout line item; Price is in minor units (cents).
type Item struct {
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

// Customer is the optional payer information forwarded to the provider.
type Customer struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// CheckoutRequest is the provider's checkout-link payload.
type CheckoutRequest struct {
	Handle   string    `json:"handle"`
	OrderNSU string    `json:"order_nsu"`
	Items    []Item    `json:"items"`
	Customer *Customer `json:"customer,omitempty"`
}

// CheckoutLink is the provider answer: the URL plus the untouched response body.
type CheckoutLink struct {
	URL string
	Raw json.RawMessage
}

type checkoutResponse struct {
	URL     string `json:"url"`
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient constructs a client with defaults for anything left empty.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	checkoutURL := strings.TrimSpace(opts.CheckoutURL)
	if checkoutURL == "" {
		checkoutURL = DefaultCheckoutURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{checkoutURL: checkoutURL, httpClient: httpClient, logger: logger}
}

// ContributionItem builds the single line item used for a contribution.
func ContributionItem(amount decimal.Decimal, description string) Item {
	return Item{Quantity: 1, Price: domain.ToMinorUnits(amount), Description: description}
}

// LineDescription is the checkout item label for a contribution. English
// locales get the English label, everything else Portuguese.
func LineDescription(locale, campaignName string) string {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return "Contribution to: " + campaignName
	}
	return "Contribuição para: " + campaignName
}

// Validate checks the request before it leaves the process.
func (r CheckoutRequest) Validate() error {
	if domain.NormalizeHandle(r.Handle) == "" {
		return fmt.Errorf("%w: handle is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.OrderNSU) == "" {
		return fmt.Errorf("%w: order_nsu is required", domain.ErrValidation)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}
	for i, item := range r.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be greater than zero", domain.ErrValidation, i)
		}
		if item.Price <= 0 {
			return fmt.Errorf("%w: items[%d].price must be greater than zero", domain.ErrValidation, i)
		}
	}
	return nil
}

// CreateCheckoutLink asks the provider for a hosted checkout URL. Any non-2xx
// status, transport failure or provider-reported failure wraps domain.ErrGateway.
func (c *Client) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Handle = domain.NormalizeHandle(req.Handle)
	if req.Customer != nil && *req.Customer == (Customer{}) {
		req.Customer = nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("infinitepay: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.checkoutURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("infinitepay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("infinitepay: %w: http request: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("infinitepay: %w: read response: %v", domain.ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("order_nsu", req.OrderNSU).
			Msg("infinitepay: checkout rejected")
		return nil, fmt.Errorf("infinitepay: %w: status %d: %s", domain.ErrGateway, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded checkoutResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("infinitepay: %w: decode response: %v", domain.ErrGateway, err)
	}
	if decoded.Success != nil && !*decoded.Success {
		return nil, fmt.Errorf("infinitepay: %w: %s", domain.ErrGateway, firstNonEmpty(decoded.Message, decoded.Error, "provider reported failure"))
	}
	if strings.TrimSpace(decoded.URL) == "" {
		return nil, fmt.Errorf("infinitepay: %w: %s", domain.ErrGateway, firstNonEmpty(decoded.Message, decoded.Error, "response has no checkout url"))
	}

	c.logger.Debug().
		Str("order_nsu", req.OrderNSU).
		Dur("took", time.Since(start)).
		Msg("infinitepay: checkout link created")
	return &CheckoutLink{URL: decoded.URL, Raw: json.RawMessage(raw)}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
