package infinitepay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
)

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Handle:   "$roofer",
		OrderNSU: "CONTRIBUTION_TEST",
		Items:    []Item{ContributionItem(decimal.RequireFromString("25.5"), "Contribuição para: Roof")},
		Customer: &Customer{Name: "Ana", Email: "ana@example.com"},
	}
}

func TestCreateCheckoutLinkSendsProviderPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://checkout.infinitepay.io/roofer/abc","slug":"abc"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{CheckoutURL: srv.URL})
	link, err := client.CreateCheckoutLink(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.infinitepay.io/roofer/abc", link.URL)
	assert.JSONEq(t, `{"url":"https://checkout.infinitepay.io/roofer/abc","slug":"abc"}`, string(link.Raw))
	assert.Equal(t, "roofer", got["handle"])
	assert.Equal(t, "CONTRIBUTION_TEST", got["order_nsu"])
	items := got["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 1, item["quantity"])
	assert.EqualValues(t, 2550, item["price"])
	customer := got["customer"].(map[string]any)
	assert.Equal(t, "ana@example.com", customer["email"])
	_, hasPhone := customer["phone_number"]
	assert.False(t, hasPhone, "empty phone should be omitted")
}

func TestCreateCheckoutLinkNon2xxIsGatewayError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	client := NewClient(Options{CheckoutURL: srv.URL})
	_, err := client.CreateCheckoutLink(context.Background(), validRequest())

	require.ErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1, calls, "gateway must not retry")
}

func TestCreateCheckoutLinkProviderReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"handle not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{CheckoutURL: srv.URL}).CreateCheckoutLink(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "handle not found")
}

func TestCreateCheckoutLinkMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{CheckoutURL: srv.URL}).CreateCheckoutLink(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrGateway)
}

func TestCreateCheckoutLinkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(Options{CheckoutURL: url}).CreateCheckoutLink(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrGateway)
}

func TestCheckoutRequestValidate(t *testing.T) {
	req := validRequest()
	req.Items[0].Price = 0
	assert.ErrorIs(t, req.Validate(), domain.ErrValidation)

	req = validRequest()
	req.Handle = " $ "
	assert.ErrorIs(t, req.Validate(), domain.ErrValidation)

	req = validRequest()
	req.Items = nil
	assert.ErrorIs(t, req.Validate(), domain.ErrValidation)

	assert.NoError(t, validRequest().Validate())
}

func TestLineDescription(t *testing.T) {
	assert.Equal(t, "Contribution to: Park", LineDescription("en-US", "Park"))
	assert.Equal(t, "Contribution to: Park", LineDescription("EN", "Park"))
	assert.Equal(t, "Contribuição para: Park", LineDescription("pt-BR", "Park"))
	assert.Equal(t, "Contribuição para: Park", LineDescription("", "Park"))
}
