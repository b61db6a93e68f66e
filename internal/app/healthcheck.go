package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/orchestrator"
)

type healthResponse struct {
	Status   string              `json:"status"`
	RunID    string              `json:"run_id"`
	Pipeline orchestrator.Status `json:"pipeline"`
}

// healthHandler reports the pipeline progress as JSON.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:   "ok",
		RunID:    app.runID,
		Pipeline: app.orchestrator.Status(),
	}); err != nil {
		logger.Warn("Failed to write health response.", "error", err)
	}
}

// healthCheckServer initializes and runs the health check HTTP server.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")
	if app.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("Health check server failed to listen", "address", addr, "error", err)
		return
	}

	// Create the server instance and store it on the app struct.
	app.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Run the server in a goroutine so it doesn't block.
	go func(srv *http.Server) {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}(app.httpServer)
}

func (app *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Closing health check server...")

	if app.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	// Create a context with a timeout for the shutdown process.
	ctx, cancel := context.WithTimeout(app.ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Health check server shut down gracefully.")
	return nil
}
