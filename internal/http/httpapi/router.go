package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"crowdfund/internal/http/handlers"
	"crowdfund/internal/infra"
	"crowdfund/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	// Limiter defaults to an in-memory window of RateLimitPerMin requests.
	Limiter         middleware.Limiter
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	IdentitySecret  string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	limiter := opts.Limiter
	if limiter == nil && opts.RateLimitPerMin > 0 {
		limiter = middleware.NewMemoryLimiter(opts.RateLimitPerMin, time.Minute)
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)
	if limiter != nil {
		r.Use(middleware.RateLimitWith(limiter, &opts.Logger))
	}
	r.Use(
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Identity(opts.IdentitySecret),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/me", app.Me)

	// Docs
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Post("/", app.CampaignsCreate)
		r.Get("/user/{userId}", app.CampaignsByOwner)
		r.Get("/{id}", app.CampaignsGet)
		r.Put("/{id}", app.CampaignsUpdate)
	})

	r.Route("/contributions", func(r chi.Router) {
		r.Post("/", app.ContributionsCreate)
		r.Get("/{id}", app.ContributionsGet)
		r.Patch("/{id}", app.ContributionsUpdateStatus)
	})

	r.Post("/create-checkout", app.CreateCheckout)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}` + "\n"))
	})

	return r
}
