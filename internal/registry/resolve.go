package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// Resolve returns the type implementing the element declared as name. The
// unit is loaded on every call; only the catalog is shared between calls.
func (r *Registry) Resolve(ctx context.Context, catalog Catalog, name string) (Type, error) {
	logger := ctxlog.FromContext(ctx)

	unitPath, ok := catalog[NormalizeName(name)]
	if !ok {
		return Type{}, &NameNotFoundError{Name: name}
	}

	load, ok := r.units[unitPath]
	if !ok {
		return Type{}, &LoadError{Name: name, Path: unitPath, Err: fmt.Errorf("unit is not registered")}
	}

	types, err := load()
	if err != nil {
		return Type{}, &LoadError{Name: name, Path: unitPath, Err: err}
	}

	var (
		found Type
		count int
	)
	for _, typ := range types {
		if typ.Name != name {
			continue
		}
		if count == 0 {
			found = typ
		}
		count++
	}

	switch {
	case count == 0:
		return Type{}, &TypeNotFoundError{Name: name, Path: unitPath}
	case count > 1:
		return Type{}, &LoadError{Name: name, Path: unitPath, Err: fmt.Errorf("unit exports %d types named '%s'", count, name)}
	case found.New == nil:
		return Type{}, &LoadError{Name: name, Path: unitPath, Err: fmt.Errorf("type '%s' has no factory", name)}
	}

	logger.Debug("Element type resolved.", "element", name, "unit", unitPath)
	return found, nil
}
