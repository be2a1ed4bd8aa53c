package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/middleware"
	"crowdfund/internal/providers/infinitepay"
	"crowdfund/internal/service"
)

// CheckoutGateway creates hosted checkout links.
type CheckoutGateway interface {
	CreateCheckoutLink(ctx context.Context, req infinitepay.CheckoutRequest) (*infinitepay.CheckoutLink, error)
}

type App struct {
	Campaigns     *service.CampaignService
	Contributions *service.ContributionService
	Checkout      CheckoutGateway
	OrderRefs     *infinitepay.OrderRefs
	Runtime       *infinitepay.RuntimeHolder
	RuntimeWait   time.Duration
	Logger        *infra.Logger
}

func NewApp(campaigns *service.CampaignService, contributions *service.ContributionService, checkout CheckoutGateway, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{
		Campaigns:     campaigns,
		Contributions: contributions,
		Checkout:      checkout,
		OrderRefs:     infinitepay.NewOrderRefs(nil),
		Runtime:       infinitepay.NewRuntimeHolder(),
		RuntimeWait:   200 * time.Millisecond,
		Logger:        logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("Invalid request body")
	}
	return nil
}

// fail maps a service error to its status code. Unexpected errors are logged
// and answered with fallback.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, err.Error())
	default:
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(fallback)
		a.error(w, http.StatusInternalServerError, fallback)
	}
}
