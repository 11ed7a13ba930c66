/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. CORS:       cross-origin requests for a frontend

ROUTE GROUPS:
  /api/members/*    member management + dues
  /api/staff/*      staff management + payroll
  /api/sessions/*   session slots and enrollment (keyed by day/shift)
  /api/payments/*   dues, payroll, voids
  /api/account/*    organization account queries

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
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

	r.Route("/api", func(r chi.Router) {
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
			r.Put("/{id}", h.ModifyMember)
			r.Delete("/{id}", h.DeleteMember)
		})

		// Staff routes
		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.ListStaff)
			r.Post("/", h.CreateStaff)
			r.Get("/{id}", h.GetStaff)
			r.Put("/{id}", h.ModifyStaff)
			r.Delete("/{id}", h.DeleteStaff)
		})

		// Session routes, keyed by (day, shift)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Route("/{day}/{shift}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Put("/", h.ModifySession)
				r.Delete("/", h.DeleteSession)
				r.Post("/enroll", h.EnrollInSession)
				r.Post("/withdraw", h.WithdrawFromSession)
			})
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Post("/dues", h.PayDues)
			r.Post("/payroll", h.PayPayroll)
			r.Post("/void", h.VoidPayment)
		})

		// Organization account routes
		r.Route("/account", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Get("/movements", h.GetMovements)
			r.Get("/summary", h.GetSummary)
		})
	})

	return r
}
