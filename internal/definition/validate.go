package definition

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
	"github.com/specialistvlad/elementflow/internal/element"
)

var (
	requiredKeys = []string{KeyName, KeyInputs}
	flatKeys     = []string{KeyInputs, KeyOutputs, KeySettings}
)

// Validate turns the raw collection value into a Definition, rejecting any
// record that does not follow the definition rules.
func Validate(ctx context.Context, raw any) (Definition, error) {
	logger := ctxlog.FromContext(ctx)

	records, ok := raw.([]any)
	if !ok {
		return nil, documentError(fmt.Sprintf("pipeline definition must be a list of elements, got %s", describe(raw)), nil)
	}

	def := make(Definition, 0, len(records))
	for idx, rec := range records {
		record, ok := asMapping(rec)
		if !ok {
			return nil, elementError(idx, "", fmt.Sprintf("element must be a mapping, got %s", describe(rec)))
		}

		for _, key := range requiredKeys {
			if _, ok := record[key]; !ok {
				return nil, elementError(idx, nameOf(record),
					fmt.Sprintf("every element must contain at least %v and optionally %q, %q, but it has only %v",
						requiredKeys, KeyOutputs, KeySettings, sortedKeys(record)))
			}
		}

		for _, key := range sortedKeys(record) {
			if isEmpty(record[key]) {
				return nil, elementError(idx, nameOf(record), fmt.Sprintf("parameter %q is specified but has no value", key))
			}
		}

		name, ok := record[KeyName].(string)
		if !ok {
			return nil, elementError(idx, "", fmt.Sprintf("parameter %q must be a string, got %s", KeyName, describe(record[KeyName])))
		}

		spec := &ElementSpec{Index: idx, Name: name}
		for _, key := range flatKeys {
			val, present := record[key]
			if !present {
				continue
			}
			values, err := flatValues(idx, name, key, val)
			if err != nil {
				return nil, err
			}
			switch key {
			case KeyInputs:
				spec.Inputs = values
			case KeyOutputs:
				spec.Outputs = values
			case KeySettings:
				spec.Settings = values
			}
		}

		for key := range record {
			if !isKnownKey(key) {
				logger.Debug("Ignoring unknown element parameter.", "index", idx, "element", name, "parameter", key)
			}
		}

		def = append(def, spec)
	}

	return def, nil
}

// flatValues checks that val is a mapping of depth one and converts it.
func flatValues(idx int, name, key string, val any) (element.Values, error) {
	m, ok := asMapping(val)
	if !ok {
		return nil, elementError(idx, name,
			fmt.Sprintf("parameter %q should be a mapping of nested parameters to their values, got %s", key, describe(val)))
	}
	values := make(element.Values, len(m))
	for k, v := range m {
		if _, nested := asMapping(v); nested {
			return nil, elementError(idx, name,
				fmt.Sprintf("nested parameter %q of %q mistakenly contains nested parameters", k, key))
		}
		values[k] = v
	}
	return values, nil
}

// asMapping accepts both map shapes produced by the decoders.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case element.Values:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// isEmpty follows the usual truthiness rules: nil, false, zero numbers and
// empty strings, lists and mappings carry no value.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isKnownKey(key string) bool {
	return key == KeyName || key == KeyInputs || key == KeyOutputs || key == KeySettings
}

func nameOf(record map[string]any) string {
	if name, ok := record[KeyName].(string); ok {
		return name
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	if _, ok := asMapping(v); ok {
		return "mapping"
	}
	if _, ok := v.([]any); ok {
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
