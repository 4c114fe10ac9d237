/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the input form

ROUTE GROUPS:
  /api/catalog/*        Activity and destination catalogs
  /api/eligibility      Eligibility check
  /api/calculate        Amount calculation
  /api/calendar/*       Day classification and schedule upload
  /api/holidays/*       School holidays
  /api/staff/*          Staff, records, monthly applications
  /api/records/*        Record deletion
  /api/applications/*   Approval workflow
  /api/master/*         Amount master
  /api/summary          Monthly roll-up
  /api/scenarios/*      Demo data
  /api/admin/*          Deadline report, reset
  /metrics              Prometheus
  /*                    Static files (input form), if built

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderStaffID, HeaderStaffRole},
		AllowCredentials: true,
	}))

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/activities", h.ListActivities)
			r.Get("/destinations", h.ListDestinations)
		})
		r.Post("/eligibility", h.CheckEligibility)
		r.Post("/calculate", h.Calculate)

		r.Route("/calendar", func(r chi.Router) {
			r.Put("/schedules", h.UploadSchedules)
			r.Get("/{date}", h.GetDay)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.ListStaff)
			r.Post("/", h.CreateStaff)
			r.Get("/{id}/records", h.ListRecords)
			r.Post("/{id}/records", h.RecordEntry)
			r.Get("/{id}/applications/{month}", h.GetApplication)
			r.Post("/{id}/applications/{month}/submit", h.SubmitApplication)
		})

		r.Delete("/records/{id}", h.DeleteRecord)

		r.Route("/applications", func(r chi.Router) {
			r.Get("/pending", h.ListPendingApplications)
			r.Post("/{staffID}/{month}/approve", h.ApproveApplication)
			r.Post("/{staffID}/{month}/return", h.ReturnApplication)
		})

		r.Route("/master", func(r chi.Router) {
			r.Get("/", h.ListMaster)
			r.Put("/{code}", h.UpdateMaster)
			r.Post("/defaults", h.SeedMasterDefaults)
		})

		r.Get("/summary", h.GetSummary)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/deadlines", h.GetDeadlineReport)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Serve the built input form, if present
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}
