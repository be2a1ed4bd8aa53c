package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/adapter/memory"
	"crowdfund/internal/domain"
	"crowdfund/internal/http/handlers"
	"crowdfund/internal/http/httpapi"
	"crowdfund/internal/infra"
	"crowdfund/internal/providers/infinitepay"
	"crowdfund/internal/service"
)

func startAPI(t *testing.T) (string, *service.CampaignService) {
	t.Helper()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://pay.example/cli"}`))
	}))
	t.Cleanup(provider.Close)

	store := memory.NewStore(nil)
	campaigns := service.NewCampaignService(store.Campaigns(), store.Contributions(), nil)
	contributions := service.NewContributionService(store.Contributions(), campaigns, nil)
	app := handlers.NewApp(campaigns, contributions, infinitepay.NewClient(infinitepay.Options{CheckoutURL: provider.URL}), nil)
	api := httptest.NewServer(httpapi.NewRouter(app, httpapi.Options{Logger: *infra.NopLogger()}))
	t.Cleanup(api.Close)
	return api.URL, campaigns
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestContributeCommand(t *testing.T) {
	apiURL, campaigns := startAPI(t)
	c, err := campaigns.Create(context.Background(), domain.CampaignInput{Name: "Biblioteca", Goal: "100", Handle: "bib"})
	require.NoError(t, err)

	out, err := run(t, "--api", apiURL, "contribute", c.ID, "--amount", "40", "--name", "Ana", "--email", "ana@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "-> pending_recorded")
	assert.Contains(t, out, "-> completed")
	assert.Contains(t, out, "completed (transaction MOCK_")

	out, err = run(t, "--api", apiURL, "campaigns", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "40.00 / 100.00")

	out, err = run(t, "--api", apiURL, "--json", "campaigns", "show", c.ID)
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "40", shown["current"])
}

func TestContributeDeclined(t *testing.T) {
	apiURL, campaigns := startAPI(t)
	c, err := campaigns.Create(context.Background(), domain.CampaignInput{Name: "Quadra", Goal: "100", Handle: "quadra"})
	require.NoError(t, err)

	out, err := run(t, "--api", apiURL, "contribute", c.ID, "-a", "5", "--name", "Ana", "--email", "ana@example.com", "--decline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remains pending")
	assert.NotContains(t, out, "-> completed")

	view, err := campaigns.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, view.Current.IsZero())
}

func TestContributeValidatesAmount(t *testing.T) {
	apiURL, _ := startAPI(t)
	_, err := run(t, "--api", apiURL, "contribute", "any", "--amount", "-1", "--name", "A", "--email", "a@b.co")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCampaignsListEmpty(t *testing.T) {
	apiURL, _ := startAPI(t)
	out, err := run(t, "--api", apiURL, "campaigns", "list")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "No campaigns yet."))
}

func TestContributeLocalUsesConfiguredStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")

	out, err := run(t, "contribute", "00000000-0000-0000-0000-000000000000", "--local",
		"--amount", "10", "--name", "Ana", "--email", "ana@example.com")
	require.Error(t, err, out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, out, "-> pending_recorded")
}
