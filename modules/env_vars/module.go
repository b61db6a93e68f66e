package env_vars

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the EnvVars element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/env_vars", registry.Types(registry.Type{
		Name: "EnvVars",
		New: func(element.Values) (element.Element, error) {
			return &EnvVars{lookup: os.LookupEnv}, nil
		},
	}))
}

// EnvVars reads environment variables. Every declared output maps an output
// key to the name of the variable it receives, for example `home: HOME`.
type EnvVars struct {
	lookup func(string) (string, bool)
}

// Run implements element.Element. An unset variable is a Minor failure.
func (e *EnvVars) Run(_ context.Context, _ element.Values, outputs element.Values) (element.Values, error) {
	out := make(element.Values, len(outputs))
	for _, key := range outputs.Keys() {
		name, err := outputs.String(key)
		if err != nil {
			msg := fmt.Sprintf("Output '%s' must name an environment variable", key)
			return nil, element.NewError(element.Major, msg, "", err)
		}
		v, ok := e.lookup(name)
		if !ok {
			return nil, element.Minorf("Environment variable %s is not set", name)
		}
		out[key] = v
	}
	return out, nil
}

// Cleanup implements element.Element.
func (e *EnvVars) Cleanup(context.Context, element.Values) error {
	return nil
}
