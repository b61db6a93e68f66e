package print

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/elementflow/internal/element"
	"github.com/specialistvlad/elementflow/internal/registry"
	"github.com/specialistvlad/elementflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint_Run(t *testing.T) {
	t.Parallel()
	ctx, logs := testutil.Context(t)

	var buf bytes.Buffer
	reg := registry.NewWithModules(&Module{Out: &buf})
	catalog, err := reg.Discover(ctx)
	require.NoError(t, err)
	typ, err := reg.Resolve(ctx, catalog, "Print")
	require.NoError(t, err)
	elem, err := typ.New(nil)
	require.NoError(t, err)

	out, err := elem.Run(ctx, element.Values{"b": 2, "a": "one"}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "      a = \"one\"\n      b = \"2\"\n", buf.String())
	assert.Contains(t, logs.String(), "Printing input")

	buf.Reset()
	_, err = elem.Run(ctx, element.Values{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "      (null)\n", buf.String())
	assert.NoError(t, elem.Cleanup(ctx, nil))
}
