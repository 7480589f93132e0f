// Package app provides application lifecycle management for the form sync server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/formsync-server/internal/config"
	"github.com/stacklok/formsync-server/internal/service"
)

// FormSyncApp encapsulates all components needed to run the form sync API server.
// It provides lifecycle management and graceful shutdown.
type FormSyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the refresh coordinator in the background and then the HTTP
// server. It blocks until the HTTP server stops or fails.
func (app *FormSyncApp) Start() error {
	if app.components.RefreshCoordinator != nil {
		go func() {
			if err := app.components.RefreshCoordinator.Start(app.ctx); err != nil {
				slog.Error("Refresh coordinator failed", "error", err)
			}
		}()
	}

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop stops the refresh coordinator, shuts the HTTP server down within
// timeout and releases storage and telemetry.
func (app *FormSyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if app.components.RefreshCoordinator != nil {
		if err := app.components.RefreshCoordinator.Stop(); err != nil {
			slog.Error("Failed to stop refresh coordinator", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.components.Telemetry != nil {
		if err := app.components.Telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *FormSyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *FormSyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Service returns the form sync service, e.g. for CLI commands that run
// operations without serving HTTP
func (app *FormSyncApp) Service() service.FormSyncService {
	return app.components.FormSyncService
}

// Close releases storage, the catalog cache and telemetry without touching
// the HTTP server. It is meant for one-shot CLI commands.
func (app *FormSyncApp) Close() {
	if app.cancelFunc != nil {
		app.cancelFunc()
	}
	if app.components.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.components.Telemetry.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}
}
