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
  4. CORS:       Cross-origin requests for payroll clients

ROUTE GROUPS:
  /api/v1/pay-periods/*    Single-employee calculation
  /api/v1/pay-runs/*       Batch calculation and ledger application
  /api/v1/timesheets/*     Hour aggregation
  /api/v1/vacation-pay/*   Provincial vacation pay
  /api/v1/employees/*      Eligibility, YTD snapshots, year-end slips
  /api/v1/rates/*          Rate table reference

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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pay-periods", func(r chi.Router) {
			r.Post("/calculate", h.CalculatePayPeriod)
		})

		r.Route("/pay-runs", func(r chi.Router) {
			r.Post("/calculate", h.CalculatePayRun)
		})

		r.Route("/timesheets", func(r chi.Router) {
			r.Post("/aggregate", h.AggregateTimesheet)
		})

		r.Route("/vacation-pay", func(r chi.Router) {
			r.Post("/calculate", h.CalculateVacationPay)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/eligibility", h.ResolveEligibility)
			r.Get("/{id}/ytd", h.GetYTD)
			r.Post("/{id}/slips", h.BuildSlip)
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/{year}", h.GetRates)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
