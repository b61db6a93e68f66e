// Package orchestrator drives a pipeline through its lifecycle.
//
// Initialize parses the definition, builds the unit catalog once and binds a
// constructed element to every spec. Run executes the elements one after
// another in declared order, threading the accumulated outputs of earlier
// elements into the inputs of later ones and applying the severity policy to
// element failures. Cleanup tears every initialized element down, in declared
// order, whatever happened during Run.
//
// Execution is strictly sequential. The only state shared with other
// goroutines is the status snapshot served by the health check endpoint.
package orchestrator
