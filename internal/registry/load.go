package registry

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// privateMarker excludes a unit from discovery when it appears in the unit's
// base name.
const privateMarker = "__"

// Catalog maps a normalized element name to the path of the unit
// implementing it.
type Catalog map[string]string

// NormalizeName lower-cases s and removes underscores.
func NormalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// unitKey returns the catalog key for the unit at p and whether the unit is
// eligible for discovery.
func unitKey(p string) (string, bool) {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || strings.Contains(base, privateMarker) {
		return "", false
	}
	return NormalizeName(base), true
}

// Discover builds the catalog of all eligible registered units.
func (r *Registry) Discover(ctx context.Context) (Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering element units...", "registered", len(r.units))

	paths := make([]string, 0, len(r.units))
	for p := range r.units {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	catalog := make(Catalog, len(paths))
	for _, p := range paths {
		key, ok := unitKey(p)
		if !ok {
			logger.Debug("Skipping private element unit.", "path", p)
			continue
		}
		if other, exists := catalog[key]; exists {
			return nil, &DiscoveryError{
				Reason: fmt.Sprintf("units '%s' and '%s' both resolve to element key '%s'", other, p, key),
			}
		}
		catalog[key] = p
	}

	if len(catalog) == 0 {
		return nil, &DiscoveryError{
			Reason: "no element units were found, check that element modules are registered",
		}
	}

	logger.Info("Element units discovered.", "count", len(catalog))
	return catalog, nil
}
