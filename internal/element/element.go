// Package element defines the contract every pipeline element satisfies and
// the error type elements use to report operational failures to the
// orchestrator.
//
// An element is a single stage of a pipeline. The orchestrator constructs it
// once with the settings declared in the pipeline definition, calls Run once
// with the merged inputs, and calls Cleanup once when the pipeline finishes,
// whatever the outcome of the run.
package element

import "context"

// Element is the interface implemented by every pipeline stage.
type Element interface {
	// Run executes the stage. inputs holds the stage's declared inputs merged
	// with everything produced by earlier stages. outputs is the stage's
	// declared output mapping (nil when the definition declares none); it
	// tells the element where to put things, it is not data. The returned
	// mapping must be non-empty when outputs were declared and empty
	// otherwise.
	//
	// Operational failures must be returned as *Error.
	Run(ctx context.Context, inputs, outputs Values) (Values, error)

	// Cleanup removes whatever the stage created. It is best-effort and
	// idempotent: a resource that does not exist is not an error.
	Cleanup(ctx context.Context, outputs Values) error
}
