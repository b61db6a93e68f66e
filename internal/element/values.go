package element

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"
)

var (
	// ErrMissingValue is returned by the typed accessors when a key is absent.
	ErrMissingValue = errors.New("missing value")
	// ErrWrongType is returned by the typed accessors when a value cannot be
	// converted to the requested type.
	ErrWrongType = errors.New("wrong value type")
)

// Values is the mapping exchanged between the orchestrator and elements:
// declared inputs, declared outputs, settings and produced outputs.
type Values map[string]any

// Clone returns a shallow copy. Cloning a nil Values yields nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	return maps.Clone(v)
}

// Keys returns the keys in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value of key as a non-empty string.
func (v Values) String(key string) (string, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %q", ErrMissingValue, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrWrongType, key, raw)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q is empty", ErrMissingValue, key)
	}
	return s, nil
}

// OptionalString returns the string value of key, or def when key is absent.
func (v Values) OptionalString(key, def string) (string, error) {
	if _, ok := v[key]; !ok {
		return def, nil
	}
	return v.String(key)
}

// Int returns the value of key as an int. Whole floats are accepted since
// some document formats do not distinguish integers from numbers.
func (v Values) Int(key string) (int, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %q", ErrMissingValue, key)
	}
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is %T(%v), want integer", ErrWrongType, key, raw, raw)
}

// OptionalInt returns the int value of key, or def when key is absent.
func (v Values) OptionalInt(key string, def int) (int, error) {
	if _, ok := v[key]; !ok {
		return def, nil
	}
	return v.Int(key)
}

// Float returns the value of key as a float64.
func (v Values) Float(key string) (float64, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %q", ErrMissingValue, key)
	}
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %q is %T, want number", ErrWrongType, key, raw)
}

// Bool returns the value of key as a bool, or def when key is absent.
func (v Values) Bool(key string, def bool) (bool, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrWrongType, key, raw)
	}
	return b, nil
}
