package definition

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// hclDecoder reads the collection from an HCL attribute.
type hclDecoder struct{}

func (d *hclDecoder) Decode(ctx context.Context, src []byte, filename, collection string) (any, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, documentError("failed to parse HCL document", diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, documentError("failed to decode HCL document", diags)
	}

	attr, ok := attrs[collection]
	if !ok {
		return nil, documentError(fmt.Sprintf("collection %q not found", collection), nil)
	}

	val, diags := attr.Expr.Value(evalContext())
	if diags.HasErrors() {
		return nil, documentError(fmt.Sprintf("failed to evaluate collection %q", collection), diags)
	}
	logger.Debug("HCL collection evaluated.", "collection", collection, "type", val.Type().FriendlyName())

	return ctyToGo(val)
}

// evalContext exposes the process environment as the "env" object so that
// definitions can reference deployment specific values.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) == 2 && pair[0] != "" {
			env[pair[0]] = cty.StringVal(pair[1])
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

// ctyToGo converts an evaluated value into plain Go values. Whole numbers
// become int, other numbers float64.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, documentError("definition contains an unknown value", nil)
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return numberToGo(val.AsBigFloat()), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, documentError(fmt.Sprintf("unsupported value type %s", ty.FriendlyName()), nil)
}

func numberToGo(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i)
		}
	}
	f, _ := bf.Float64()
	return f
}
