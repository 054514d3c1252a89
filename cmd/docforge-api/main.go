// Package main provides the docforge API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/office"
	"github.com/docforge/docforge/internal/scratch"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "docforge",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("docx_engine", cfg.Converters.Docx.Engine).
		Str("md_engine", cfg.Converters.MD.Engine).
		Msg("Starting docforge API")

	// Scratch store with background sweeper
	store, err := scratch.NewStore(scratch.Config{
		Dir:           cfg.Scratch.Dir,
		Retention:     cfg.Scratch.Retention,
		SweepInterval: cfg.Scratch.SweepInterval,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot initialize scratch store")
	}
	defer store.Close()

	// Converters
	runner := office.NewRunner(cfg.Converters.Office.Binary, logger)
	registry := convert.NewRegistry(
		convert.NewDocxConverter(cfg.Converters.Docx.Engine, runner),
		convert.NewPptxConverter(),
		convert.NewTextConverter(),
		convert.NewMarkdownConverter(cfg.Converters.MD.Engine, runner),
	)

	service := convert.NewService(convert.Config{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		Timeout:        cfg.Limits.ConvertTimeout,
	}, registry, store, history.NewLog(cfg.History.MaxEntries), logger)

	// Surface missing external tools early, but keep serving; the
	// affected formats report unavailable until the tool appears.
	for _, st := range service.Formats() {
		if !st.Ready {
			logger.Warn().
				Str("format", string(st.Info.Format)).
				Str("detail", st.Detail).
				Msg("Converter not ready")
		}
	}

	// Initialize router with all handlers
	router := NewRouter(logger, cfg, service)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
