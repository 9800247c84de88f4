package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/nesthome-leads/internal/infra/http/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(app.logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.SessionHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", app.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// public
		r.With(middleware.RateLimit(app.limiter)).Post("/leads", app.leads.Submit)
		r.With(middleware.RateLimit(app.limiter)).Post("/contact", app.contact.Handle)
		r.Post("/estimate", app.estimate.Handle)
		r.Get("/spreadsheet-url", app.sync.GetSpreadsheetURL)
		r.With(middleware.RateLimit(app.limiter)).Post("/admin/login", app.admin.Login)

		// admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(app.auth))

			r.Post("/admin/logout", app.admin.Logout)
			r.Get("/admin/verify", app.admin.Verify)
			r.Post("/admin/change-password", app.admin.ChangePassword)
			r.Get("/admin/analytics", app.analytics.Handle)

			r.Get("/leads", app.leads.List)
			r.Get("/leads/export.csv", app.leads.ExportCSV)
			r.Get("/leads/stream", app.stream.Handle)
			r.Patch("/leads/{id}/status", app.leads.UpdateStatus)
			r.Patch("/leads/{id}", app.leads.UpdateDetails)
			r.Delete("/leads/{id}", app.leads.Delete)

			r.Post("/sync-all-leads", app.sync.SyncAll)
		})
	})

	return r
}
