package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"
)

// NewRouter builds the router with the shared middleware stack and every route mounted
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.services.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   h.config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	if h.config.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(h.config.RateLimitPerMinute, time.Minute))
	}

	h.SetRoutes(r)
	return r
}

// SetRoutes mounts the health check and the versioned API
func (h *Handler) SetRoutes(r chi.Router) {
	r.Get("/health", h.HealthHandler)

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Post("/accounts", h.RegisterAccount)
		r.Get("/ratings/{game}/leaderboard", h.Leaderboard)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/accounts/me", h.GetAccount)
			r.Get("/accounts/me/ledger", h.ListLedger)

			r.Post("/wallet/deposit", h.Deposit)
			r.Post("/wallet/withdraw", h.Withdraw)

			r.Route("/challenges", func(r chi.Router) {
				r.Post("/", h.CreateChallenge)
				r.Get("/", h.ListChallenges)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetChallenge)
					r.Post("/counter", h.CounterOffer)
					r.Post("/accept", h.AcceptChallenge)
					r.Post("/decline", h.DeclineChallenge)
					r.Post("/results", h.ReportResult)
					r.Post("/settle", h.SettleChallenge)
				})
			})

			r.Get("/odds/quote", h.QuoteOdds)
			r.Get("/ratings/{game}/me", h.GetRating)
			r.Get("/notifications", h.Notifications)
		})
	})
}
