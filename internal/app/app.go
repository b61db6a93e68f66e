package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/definition"
	"github.com/specialistvlad/elementflow/internal/orchestrator"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/modules/http_client"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW         io.Writer
	config       *Config
	runID        string
	ctx          context.Context
	logger       *slog.Logger
	logCloser    io.Closer
	client       *http.Client
	registry     *registry.Registry
	orchestrator *orchestrator.Orchestrator
	httpServer   *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no modules are given the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	runID := uuid.NewString()
	logger, closer := newLogger(cfg.LogLevel, cfg.LogFormat, outW, cfg.LogDir, time.Now())
	logger = logger.With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.", "log_dir", cfg.LogDir)

	client := http_client.New(http_client.DefaultTimeout)
	if len(modules) == 0 {
		modules = coreModules(cfg, outW, client)
	}
	reg := registry.NewWithModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "units", reg.Units())

	return &App{
		outW:         outW,
		config:       cfg,
		runID:        runID,
		ctx:          ctx,
		logger:       logger,
		logCloser:    closer,
		client:       client,
		registry:     reg,
		orchestrator: orchestrator.New(definition.NewParser(cfg.Collection), reg),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Status returns the pipeline status.
func (a *App) Status() orchestrator.Status {
	return a.orchestrator.Status()
}

// Close releases the log file and idle HTTP connections.
func (a *App) Close() error {
	http_client.Close(a.client)
	return a.logCloser.Close()
}
