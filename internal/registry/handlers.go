package registry

import (
	"fmt"
	"log/slog"
)

// RegisterUnit registers the load function of the unit at path. Registering
// the same path twice is a programming error and panics.
func (r *Registry) RegisterUnit(path string, load LoadFunc) {
	if load == nil {
		panic(fmt.Sprintf("unit '%s' registered without a load function", path))
	}
	if _, exists := r.units[path]; exists {
		panic(fmt.Sprintf("unit with path '%s' already registered", path))
	}
	slog.Debug("Registering element unit.", "path", path)
	r.units[path] = load
}

// Types is a helper for units whose load cannot fail.
func Types(types ...Type) LoadFunc {
	return func() ([]Type, error) {
		return types, nil
	}
}
