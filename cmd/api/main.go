package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sharerapy/internal/app"
	"sharerapy/internal/config"
	"sharerapy/internal/importer"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about therapy reports (AI Mode) and manages the reports it answers from.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Sharerapy API
//   description: |
//     Retrieval-augmented answers over indexed therapy reports, streamed as
//     Server-Sent Events, plus report CRUD, reindexing and health endpoints.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json
//   - text/event-stream

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog := config.NewLogger(cfg)
	defer func() {
		_ = closeLog()
	}()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat, "file", cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	a, err := app.New(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close resources", "error", err)
		}
	}()

	if err := a.EnsureCollection(ctx); err != nil {
		return err
	}
	a.CheckModels(ctx)

	if cfg.ImportWatch {
		if err := startImportWatcher(ctx, a, logger); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           a.Handler(registry),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: answers stream for up to GENERATION_TIMEOUT.
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// startImportWatcher imports the directory once, then keeps importing changed files until ctx is done.
func startImportWatcher(ctx context.Context, a *app.App, logger *slog.Logger) error {
	dir := a.Config.ImportDir
	res, err := a.Importer.ImportDir(ctx, dir)
	if err != nil {
		return err
	}
	logger.Info("initial import finished", "dir", dir, "created", res.Created, "updated", res.Updated, "failed", res.Failed)

	events, err := importer.NewWatcher(importer.DefaultDebounce).Watch(ctx, dir)
	if err != nil {
		return err
	}
	go func() {
		if err := a.Importer.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("import watcher stopped", "error", err)
		}
	}()
	logger.Info("watching for report changes", "dir", dir)
	return nil
}
