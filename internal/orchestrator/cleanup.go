package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// Cleanup calls Cleanup on every initialized element in declared order,
// passing each element its own declared outputs. It runs whether Run
// completed, aborted or was never called. Element cleanup errors are logged
// and joined; they never stop the remaining elements from being cleaned up.
func (o *Orchestrator) Cleanup(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	switch st := o.Status().State; st {
	case Uninitialized, Failed, CleanedUp:
		logger.Debug("Nothing to clean up.", "state", st.String())
		return nil
	}

	logger.Info("🧹 Cleaning up pipeline elements...", "count", len(o.specs))

	var errs []error
	for _, spec := range o.specs {
		if spec.Instance == nil {
			continue
		}
		elemCtx, elemLogger := ctxlog.With(ctx, "element", spec.Name, "index", spec.Index)
		if err := spec.Instance.Cleanup(elemCtx, spec.Outputs); err != nil {
			elemLogger.Warn("Element cleanup failed.", "error", err)
			errs = append(errs, fmt.Errorf("cleanup of element %d (%s): %w", spec.Index, spec.Name, err))
			continue
		}
		elemLogger.Debug("Element cleaned up.")
	}

	o.setState(CleanedUp)
	logger.Info("Pipeline elements cleaned up.")
	return errors.Join(errs...)
}
