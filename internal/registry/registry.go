package registry

import "github.com/specialistvlad/elementflow/internal/element"

// Module is the interface that all element packages must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Factory constructs an element from the settings declared in the pipeline
// definition. settings is nil when the definition declares none.
type Factory func(settings element.Values) (element.Element, error)

// Type is one element implementation exported by a unit.
type Type struct {
	Name string
	New  Factory
}

// LoadFunc returns the element types exported by a unit. It may fail, for
// example when a tool the unit depends on is not installed.
type LoadFunc func() ([]Type, error)

// Registry holds the registered units for a single application instance.
type Registry struct {
	units map[string]LoadFunc
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		units: make(map[string]LoadFunc),
	}
}

// NewWithModules creates a registry and registers every module into it.
func NewWithModules(modules ...Module) *Registry {
	r := New()
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// Units returns the number of registered units.
func (r *Registry) Units() int {
	return len(r.units)
}
