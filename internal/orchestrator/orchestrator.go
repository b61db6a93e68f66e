package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/definition"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
)

// Parser produces a validated definition from a document.
type Parser interface {
	Parse(ctx context.Context, source string) (definition.Definition, error)
}

// Resolver builds the unit catalog and resolves element names against it.
type Resolver interface {
	Discover(ctx context.Context) (registry.Catalog, error)
	Resolve(ctx context.Context, catalog registry.Catalog, name string) (registry.Type, error)
}

// Orchestrator runs one pipeline through initialize, run and cleanup.
type Orchestrator struct {
	parser   Parser
	resolver Resolver

	specs   definition.Definition
	outputs element.Values

	mu     sync.RWMutex
	status Status
}

// New creates an orchestrator in the Uninitialized state.
func New(parser Parser, resolver Resolver) *Orchestrator {
	return &Orchestrator{
		parser:   parser,
		resolver: resolver,
	}
}

// Initialize parses the definition at source, discovers the element units
// once and binds a constructed element to every spec. On failure nothing is
// retained and the orchestrator ends in the Failed state.
func (o *Orchestrator) Initialize(ctx context.Context, source string) error {
	if st := o.Status().State; st != Uninitialized {
		return fmt.Errorf("%w: cannot initialize in state %s", ErrInvalidState, st)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Initializing pipeline elements...", "definition", source)

	specs, err := o.initialize(ctx, source)
	if err != nil {
		logger.Error("Pipeline elements initialization failed.", "error", err)
		o.setState(Failed)
		return err
	}

	o.specs = specs
	o.outputs = element.Values{}

	o.mu.Lock()
	o.status = Status{State: Initialized, Total: len(specs)}
	o.mu.Unlock()

	logger.Info("Pipeline elements initialized.", "count", len(specs))
	return nil
}

func (o *Orchestrator) initialize(ctx context.Context, source string) (definition.Definition, error) {
	def, err := o.parser.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	catalog, err := o.resolver.Discover(ctx)
	if err != nil {
		return nil, err
	}

	for _, spec := range def {
		typ, err := o.resolver.Resolve(ctx, catalog, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("element %d (%s): %w", spec.Index, spec.Name, err)
		}

		instance, err := typ.New(spec.Settings)
		if err != nil {
			return nil, &definition.DefinitionError{
				Source: source,
				Index:  spec.Index,
				Name:   spec.Name,
				Reason: "element could not be constructed from its settings",
				Err:    err,
			}
		}
		if instance == nil {
			return nil, fmt.Errorf("element %d (%s): factory returned no element", spec.Index, spec.Name)
		}
		spec.Instance = instance

		ctxlog.FromContext(ctx).Debug("Element constructed.", "index", spec.Index, "element", spec.Name, "settings", spec.Settings.Keys())
	}

	return def, nil
}

// Definition returns the initialized specs. It is nil before a successful
// Initialize.
func (o *Orchestrator) Definition() definition.Definition {
	return o.specs
}

// Outputs returns a copy of the accumulated outputs.
func (o *Orchestrator) Outputs() element.Values {
	out := make(element.Values, len(o.outputs))
	for k, v := range o.outputs {
		out[k] = v
	}
	return out
}

// Status returns a snapshot of the orchestrator's progress. It is safe to
// call from any goroutine.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.State = s
	if s != Running {
		o.status.Element = ""
	}
}

func (o *Orchestrator) setCurrent(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Element = name
}

func (o *Orchestrator) markCompleted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Completed++
}
