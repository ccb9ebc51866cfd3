package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-cinema-client/internal/config"
	jwtinfra "github.com/go-cinema-client/internal/infrastructure/jwt"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/transport/http/handler"
	appmiddleware "github.com/go-cinema-client/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the reference backend router implementing the REST
// contract the client engine consumes.
func NewRouter(cfg *config.Config, db *memdb.DB, provider *jwtinfra.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(provider)

	// 5 requests/second, burst of 10, applied to the credential-issuing endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authH := handler.NewAuthHandler(db, provider)
	userH := handler.NewUserHandler(db)
	cartH := handler.NewCartHandler(db)
	favH := handler.NewFavoritesHandler(db)
	bookH := handler.NewBookingsHandler(db)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", handler.Health)
		r.With(sensitiveRL.Limit).Post("/auth/signin", authH.SignIn)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/google", authH.Google)
		r.Get("/auth/verify", authH.Verify)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/refresh", authH.Refresh)
			r.Patch("/users/me", userH.UpdateMe)

			r.Post("/cart/sync", cartH.Sync)
			r.Get("/cart", cartH.Get)
			r.Post("/cart/validate", cartH.Validate)

			r.Post("/favorite/sync", favH.Sync)
			r.Get("/favorite", favH.Get)

			r.Post("/bookings/create-checkout-session", bookH.CreateCheckoutSession)
			r.Get("/bookings/my-bookings", bookH.MyBookings)
		})
	})

	return r
}
