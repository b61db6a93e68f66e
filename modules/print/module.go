package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed values. Nil prints to standard output.
	Out io.Writer
}

// Register registers the Print element.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("modules/print", registry.Types(registry.Type{
		Name: "Print",
		New: func(element.Values) (element.Element, error) {
			out := m.Out
			if out == nil {
				out = os.Stdout
			}
			return &Print{out: out}, nil
		},
	}))
}

// Print writes its inputs, including everything produced so far, sorted by
// key.
type Print struct {
	out io.Writer
}

// Run implements element.Element.
func (p *Print) Run(ctx context.Context, inputs, _ element.Values) (element.Values, error) {
	ctxlog.FromContext(ctx).Info("Printing input")

	if len(inputs) == 0 {
		fmt.Fprintln(p.out, "      (null)")
		return element.Values{}, nil
	}

	for _, k := range inputs.Keys() {
		fmt.Fprintf(p.out, "      %s = %q\n", k, fmt.Sprint(inputs[k]))
	}

	return element.Values{}, nil
}

// Cleanup implements element.Element.
func (p *Print) Cleanup(context.Context, element.Values) error {
	return nil
}
