package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// errCleanup marks an error raised while cleaning up a pipeline that
// otherwise succeeded.
var errCleanup = errors.New("pipeline cleanup failed")

// Run initializes the pipeline, runs it and always cleans up the elements
// that were initialized, whatever the outcome of the run. The run error, if
// any, is returned unchanged so callers can inspect it with errors.As.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	if err := a.orchestrator.Initialize(ctx, a.config.DefinitionPath); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	runErr := a.orchestrator.Run(ctx)

	// Elements must release their resources even when the run was cancelled.
	cleanupErr := a.orchestrator.Cleanup(context.WithoutCancel(ctx))

	switch {
	case runErr != nil:
		if cleanupErr != nil {
			a.logger.Warn("Cleanup after a failed run reported errors.", "error", cleanupErr)
		}
		return runErr
	case cleanupErr != nil:
		return errors.Join(errCleanup, cleanupErr)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
