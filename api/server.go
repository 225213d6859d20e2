/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard

ROUTE GROUPS:
  /api/restaurants/{restaurantID}/*  Tenant-scoped resources
  /api/schedules/validate            Stateless validation gate
  /healthz                           Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Validation gate is tenant-independent
		r.Post("/schedules/validate", h.ValidateSchedule)

		r.Route("/restaurants/{restaurantID}", func(r chi.Router) {
			// Schedule routes
			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", h.ListSchedules)
				r.Post("/", h.CreateSchedule)
				r.Get("/{id}", h.GetSchedule)
				r.Put("/{id}", h.UpdateSchedule)
				r.Delete("/{id}", h.DeleteSchedule)
				r.Get("/{id}/preview", h.PreviewSettlement)
			})

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Put("/{id}/hours", h.SetHours)
			})

			// Daily totals
			r.Route("/totals", func(r chi.Router) {
				r.Get("/{date}", h.GetTotals)
				r.Put("/{date}", h.PutTotals)
			})

			// Deduction accounts
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.ListAccounts)
				r.Post("/", h.CreateAccount)
			})

			// Settlements
			r.Route("/settlements", func(r chi.Router) {
				r.Get("/{date}", h.ListSettlements)
				r.Post("/run", h.RunSettlements)
			})
		})
	})

	return r
}
