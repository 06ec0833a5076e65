package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/trip-tailor/internal/api/auth"
	"github.com/FACorreiaa/trip-tailor/internal/api/city"
	"github.com/FACorreiaa/trip-tailor/internal/api/sharing"
	"github.com/FACorreiaa/trip-tailor/internal/api/trip"
)

// Config carries the handlers and middleware the router mounts. Server-wide
// middleware (request ID, recoverer, request logging) is applied in main
// before this router is mounted.
type Config struct {
	AuthHandler            auth.Handler
	TripHandler            trip.Handler
	SharingHandler         sharing.Handler
	CityHandler            city.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires the HTTP surface. Public routes (auth bootstrap, place
// lookup, anonymous trip reads) are grouped apart from the authenticated
// trip operations.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.RegisterHandler)
			r.Post("/auth/login", cfg.AuthHandler.LoginHandler)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshTokenHandler)

			r.Get("/places", cfg.CityHandler.SearchPlacesHandler)

			// Anonymous read; holding the public identifier is the capability.
			r.Get("/trips/public/{publicID}", cfg.SharingHandler.GetPublicTripHandler)
		})

		// Protected routes.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.LogoutHandler)
			r.Post("/auth/logout/all", cfg.AuthHandler.LogoutAllHandler)

			r.Post("/trips/generate", cfg.TripHandler.GenerateItineraryHandler)
			r.Post("/trips", cfg.TripHandler.SaveTripHandler)
			r.Get("/trips", cfg.TripHandler.GetUserTripsHandler)
			r.Get("/trips/stats", cfg.TripHandler.GetTripStatsHandler)
			r.Get("/trips/{tripID}", cfg.TripHandler.GetTripHandler)
			r.Delete("/trips/{tripID}", cfg.TripHandler.DeleteTripHandler)
			r.Put("/trips/{tripID}/visibility", cfg.SharingHandler.SetVisibilityHandler)
		})
	})

	return r
}
