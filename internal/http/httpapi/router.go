package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"optibite/internal/http/handlers"
	"optibite/internal/middleware"
)

// Options configures the cross-cutting middleware of the router.
type Options struct {
	DefaultLocale  string
	AllowedOrigins []string
	RateLimit      int
	CountryLookup  middleware.CountryLookup
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Nil trusts nobody.
	TrustedProxies *middleware.TrustedProxies
	Logger         zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.ClientAddr(opts.TrustedProxies),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	limited := middleware.RateLimit(opts.RateLimit, time.Minute)

	r.Get("/", app.Root)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Post("/energy", app.EstimateEnergy)
		r.Post("/plans/descriptions", app.DescribeMeals)
		r.Post("/swaps", app.SuggestSwaps)
		r.With(limited).Post("/plans", app.GeneratePlan)
		r.With(limited).Post("/chat", app.Chat)
	})

	// Routes kept for clients of the first release.
	r.Post("/calculate-bmr", app.EstimateEnergy)
	r.With(limited).Post("/generate-meal-plan", app.GeneratePlanLegacy)
	r.Post("/generate-descriptions", app.DescribeMeals)
	r.Post("/swap-suggestions", app.SuggestSwaps)

	return r
}
