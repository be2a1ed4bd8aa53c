// Package client is a typed HTTP client for the crowdfunding API. It
// implements the saga ports so the contribution flow can run against a
// remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/providers/infinitepay"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// UserID is sent as X-User-ID on every request when set.
	UserID string
	Locale string
	Logger *infra.Logger
}

type Client struct {
	base   *url.URL
	http   *http.Client
	userID string
	locale string
	logger *infra.Logger
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		raw = "http://localhost:8080"
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{base: base, http: httpClient, userID: opts.UserID, locale: opts.Locale, logger: logger}, nil
}

// APIError is a non-2xx answer. It unwraps to the matching domain sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusConflict:
		return domain.ErrInvalidTransition
	}
	return nil
}

// Campaign is the API's campaign view.
type Campaign struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	Goal          decimal.Decimal `json:"goal"`
	Current       decimal.Decimal `json:"current"`
	Handle        string          `json:"handle"`
	UserID        string          `json:"userId"`
	CheckoutURL   *string         `json:"checkoutUrl"`
	CreatedAt     time.Time       `json:"createdAt"`
	Contributions []Contribution  `json:"contributions"`
}

// Contribution is the API's contribution record.
type Contribution struct {
	ID               string          `json:"id"`
	CampaignID       string          `json:"campaignId"`
	Amount           decimal.Decimal `json:"amount"`
	ContributorName  string          `json:"contributorName"`
	ContributorEmail string          `json:"contributorEmail"`
	Status           string          `json:"status"`
	TransactionNSU   *string         `json:"transactionNsu"`
	OrderNSU         *string         `json:"orderNsu"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Campaign         *Campaign       `json:"campaign,omitempty"`
}

func (c Contribution) toDomain() *domain.Contribution {
	return &domain.Contribution{
		ID:               c.ID,
		CampaignID:       c.CampaignID,
		Amount:           c.Amount,
		ContributorName:  c.ContributorName,
		ContributorEmail: c.ContributorEmail,
		Status:           domain.ContributionStatus(c.Status),
		TransactionNSU:   c.TransactionNSU,
		OrderNSU:         c.OrderNSU,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (c *Client) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var out []Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetContribution(ctx context.Context, id string) (*Contribution, error) {
	var out Contribution
	if err := c.do(ctx, http.MethodGet, "/contributions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateContribution(ctx context.Context, in domain.ContributionInput) (*domain.Contribution, error) {
	body := map[string]any{
		"campaignId":       in.CampaignID,
		"amount":           json.Number(in.Amount),
		"contributorName":  in.ContributorName,
		"contributorEmail": in.ContributorEmail,
	}
	var out Contribution
	if err := c.do(ctx, http.MethodPost, "/contributions", body, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateContributionStatus(ctx context.Context, id string, status domain.ContributionStatus, transactionNSU string) (*domain.Contribution, error) {
	body := map[string]any{"status": status}
	if transactionNSU != "" {
		body["transactionNsu"] = transactionNSU
	}
	var out Contribution
	if err := c.do(ctx, http.MethodPatch, "/contributions/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

func (c *Client) CompleteContribution(ctx context.Context, id, transactionNSU string) (*domain.Contribution, error) {
	return c.UpdateContributionStatus(ctx, id, domain.ContributionCompleted, transactionNSU)
}

// CreateCheckoutLink calls POST /create-checkout. Server-side failures wrap
// domain.ErrGateway.
func (c *Client) CreateCheckoutLink(ctx context.Context, contributionID string, req infinitepay.CheckoutRequest) (*infinitepay.CheckoutLink, error) {
	payload := struct {
		infinitepay.CheckoutRequest
		ContributionID string `json:"contributionId,omitempty"`
	}{req, contributionID}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/create-checkout", payload, &raw); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 500 {
			return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
		}
		return nil, err
	}
	var decoded struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil || strings.TrimSpace(decoded.URL) == "" {
		return nil, fmt.Errorf("%w: checkout response has no url", domain.ErrGateway)
	}
	return &infinitepay.CheckoutLink{URL: decoded.URL, Raw: raw}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("client: read %s %s: %w", method, path, err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
