package definition

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlDecoder reads the collection from the top-level mapping of a YAML
// document. JSON documents are valid YAML and go through here as well.
type yamlDecoder struct{}

func (d *yamlDecoder) Decode(_ context.Context, src []byte, _ string, collection string) (any, error) {
	var doc any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, documentError("failed to parse YAML document", err)
	}

	root, ok := asMapping(doc)
	if !ok {
		return nil, documentError(fmt.Sprintf("document root must be a mapping, got %s", describe(doc)), nil)
	}

	raw, ok := root[collection]
	if !ok {
		return nil, documentError(fmt.Sprintf("collection %q not found", collection), nil)
	}
	return normalizeYAML(raw), nil
}

// normalizeYAML rewrites map[any]any nodes into map[string]any so the
// validator sees one mapping shape.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	}
	return v
}
