package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/definition"
	"github.com/specialistvlad/elementflow/internal/element"
)

// Run executes every element once, in declared order. It returns nil when
// the pipeline completed, *AbortError when a Major failure stopped it,
// *ContractViolationError, *SeverityError or *ElementFailureError for
// defects. Run does not clean up; call Cleanup afterwards in every case.
func (o *Orchestrator) Run(ctx context.Context) error {
	if st := o.Status().State; st != Initialized {
		return fmt.Errorf("%w: cannot run in state %s", ErrInvalidState, st)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Running pipeline elements...", "count", len(o.specs))
	o.setState(Running)

	for _, spec := range o.specs {
		if err := ctx.Err(); err != nil {
			o.setState(Aborted)
			return fmt.Errorf("pipeline run cancelled before element %d (%s): %w", spec.Index, spec.Name, err)
		}

		o.setCurrent(spec.Name)
		produced, err := o.runElement(ctx, spec)
		if err != nil {
			o.setState(Aborted)
			return err
		}

		maps.Copy(o.outputs, produced)
		o.markCompleted()
	}

	o.setState(Completed)
	logger.Info("🏁 Pipeline finished.", "outputs", o.outputs.Keys())
	return nil
}

// runElement runs one element and returns its contribution to the
// accumulated outputs.
func (o *Orchestrator) runElement(ctx context.Context, spec *definition.ElementSpec) (element.Values, error) {
	ctx, logger := ctxlog.With(ctx, "element", spec.Name, "index", spec.Index)

	spec.Inputs = mergeInputs(spec.Inputs, o.outputs)

	logger.Info("▶️ Starting element")
	logger.Debug("Element inputs.", "keys", spec.Inputs.Keys(), "declared_outputs", spec.Outputs.Keys())

	produced, err := spec.Instance.Run(ctx, spec.Inputs, spec.Outputs)
	if err != nil {
		return handleElementError(ctx, spec, err)
	}

	if err := checkContract(spec, produced); err != nil {
		logger.Error("Element broke its output contract.", "error", err)
		return nil, err
	}

	logger.Info("✅ Finished element", "outputs", produced.Keys())
	return produced, nil
}

// mergeInputs adds the accumulated outputs to the declared inputs. Keys
// declared by the element are never overwritten.
func mergeInputs(declared, accumulated element.Values) element.Values {
	merged := make(element.Values, len(declared)+len(accumulated))
	maps.Copy(merged, declared)
	for k, v := range accumulated {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

// checkContract verifies that an element returned outputs if and only if the
// element declares outputs.
func checkContract(spec *definition.ElementSpec, produced element.Values) error {
	declared := spec.Outputs != nil
	if declared == (len(produced) > 0) {
		return nil
	}
	return &ContractViolationError{
		Index:    spec.Index,
		Element:  spec.Name,
		Declared: declared,
		Returned: len(produced),
	}
}

// handleElementError applies the severity policy. A Minor failure yields an
// empty contribution and no error.
func handleElementError(ctx context.Context, spec *definition.ElementSpec, err error) (element.Values, error) {
	logger := ctxlog.FromContext(ctx)

	var elemErr *element.Error
	if !errors.As(err, &elemErr) {
		logger.Error("Element failed with an unclassified error.", "error", err)
		return nil, &ElementFailureError{Index: spec.Index, Element: spec.Name, Err: err}
	}

	attrs := []any{
		"severity", string(elemErr.Severity),
		"public_message", elemErr.PublicMessage,
		"log_message", elemErr.LogMessage,
	}
	if elemErr.Err != nil {
		attrs = append(attrs, "error", elemErr.Err)
	}

	switch elemErr.Severity {
	case element.Major:
		logger.Error(elementMessage, attrs...)
		return nil, &AbortError{Index: spec.Index, Element: spec.Name, Cause: elemErr}
	case element.Minor:
		logger.Warn(elementMessage, attrs...)
		logger.Info("⏭️ Continuing without outputs of the failed element")
		return element.Values{}, nil
	default:
		logger.Error(elementMessage, attrs...)
		return nil, &SeverityError{Index: spec.Index, Element: spec.Name, Cause: elemErr}
	}
}
