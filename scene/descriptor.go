// Rebuilds live scene objects (shapes, gradients, patterns, clip paths)
// from their serialized descriptors.
//
// A descriptor is the decoded form of a JSON (or YAML) object. Its
// "type" field selects, through a Namespace, the factory building
// the live instance. Factories run concurrently; a failing batch
// disposes whatever it already built, so that callers either get every
// requested instance or none of them.
package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Descriptor is the serialized, data only, representation of a live object,
// as produced by a JSON or YAML decoder.
// Descriptors are never modified by this package.
type Descriptor map[string]any

// AsDescriptor returns `v` as a Descriptor, if it is a mapping.
func AsDescriptor(v any) (Descriptor, bool) {
	switch v := v.(type) {
	case Descriptor:
		return v, v != nil
	case map[string]any:
		return Descriptor(v), v != nil
	}
	return nil, false
}

// Descriptors converts a decoded array of mappings.
func Descriptors(v any) ([]Descriptor, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []Descriptor:
		return v, nil
	case []map[string]any:
		out := make([]Descriptor, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case []any:
		out := make([]Descriptor, len(v))
		for i, item := range v {
			d, ok := AsDescriptor(item)
			if !ok {
				return nil, fmt.Errorf("item %d is not an object but %T", i, item)
			}
			out[i] = d
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected an array of objects, got %T", v)
}

// Type returns the type tag, or an empty string.
func (d Descriptor) Type() string {
	s, _ := d["type"].(string)
	return s
}

// Keys returns the field names in sorted order.
func (d Descriptor) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pick returns a shallow copy of `d` restricted to `keys`.
// Missing keys are omitted.
func (d Descriptor) Pick(keys ...string) Descriptor {
	out := make(Descriptor, len(keys))
	for _, k := range keys {
		if v, ok := d[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Number returns the numeric field `key`, or `def` if it is absent or null.
func (d Descriptor) Number(key string, def float64) (float64, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := ToFloat(v)
	if !ok {
		return def, fmt.Errorf("field %s: expected a number, got %T", key, v)
	}
	return f, nil
}

// String returns the string field `key`, or `def` if it is absent or null.
func (d Descriptor) String(key string, def string) (string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("field %s: expected a string, got %T", key, v)
	}
	return s, nil
}

// Bool returns the boolean field `key`, or `def` if it is absent or null.
func (d Descriptor) Bool(key string, def bool) (bool, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("field %s: expected a boolean, got %T", key, v)
	}
	return b, nil
}

// ToFloat converts the numeric types produced by the JSON and YAML decoders.
func ToFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToFloats converts a decoded array of numbers.
func ToFloats(v any) ([]float64, error) {
	items, ok := v.([]any)
	if !ok {
		if fs, ok := v.([]float64); ok {
			return fs, nil
		}
		return nil, fmt.Errorf("expected an array of numbers, got %T", v)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := ToFloat(item)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a number, got %T", i, item)
		}
		out[i] = f
	}
	return out, nil
}

// Truthy mirrors the truthiness of serialized values: null, false,
// zero, NaN and the empty string are falsy, everything else is truthy.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case Descriptor:
		return v != nil
	case map[string]any:
		return v != nil
	case []any:
		return v != nil
	}
	if f, ok := ToFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
