package apptest

import (
	"strings"

	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/testutil"
)

// SimpleModule is a test helper that registers one unit per fake element,
// at "modules/<lower-case label>", exporting a type named after the label.
// The factory stores the declared settings on the fake.
type SimpleModule struct {
	Elements []*testutil.FakeElement
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, f := range m.Elements {
		f := f
		r.RegisterUnit("modules/"+strings.ToLower(f.Label), registry.Types(registry.Type{
			Name: f.Label,
			New: func(settings element.Values) (element.Element, error) {
				f.Settings = settings
				return f, nil
			},
		}))
	}
}
