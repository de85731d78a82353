/*
server.go - HTTP router and middleware configuration

ROUTER: chi

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. Logger:        Request logging
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the dashboard frontend
  5. RequireCaller: Caller context from the identity gateway (API routes)

ROUTE GROUPS:
  /api/revenue-targets/*  Targets and performance
  /api/scenarios/*        Demo scenarios (only with -scenarios)
  /healthz                Liveness probe
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, resolver CallerResolver, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			HeaderLawFirmID, HeaderUserID, HeaderUserRole, HeaderDepartmentID,
		},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/revenue-targets", func(r chi.Router) {
			r.Use(RequireCaller(resolver))
			r.Get("/", h.ListTargets)
			r.Post("/", h.SetTarget)
			r.Get("/performance", h.GetPerformance)
			r.Get("/performance/series", h.GetPerformanceSeries)
			r.Delete("/{id}", h.DeleteTarget)
		})

		if h.ScenariosEnabled() {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})
		}
	})

	return r
}
