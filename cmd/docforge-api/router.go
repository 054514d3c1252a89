// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docforge/docforge/cmd/docforge-api/handlers"
	"github.com/docforge/docforge/cmd/docforge-api/middleware"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, service *convert.Service) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	// Conversions can legitimately run for minutes; bound requests by
	// the write timeout rather than the read timeout.
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	// Initialize handlers
	homeHandler := handlers.NewHomeHandler(logger, service, cfg.Limits.MaxUploadBytes)
	convertHandler := handlers.NewConvertHandler(logger, service, cfg.Limits.MaxUploadBytes)
	formatsHandler := handlers.NewFormatsHandler(logger, service)
	historyHandler := handlers.NewHistoryHandler(logger, service)
	healthHandler := handlers.NewHealthHandler(service)

	// Health check
	r.Get("/health", healthHandler.Health)

	// Browser upload page
	r.Get("/", homeHandler.Home)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", convertHandler.Convert)
		r.Get("/formats", formatsHandler.List)
		r.Get("/history", historyHandler.List)
	})

	return r
}
