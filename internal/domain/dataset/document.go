package dataset

import (
	"fmt"
	"maps"
	"slices"
)

// Reserved document keys.
const (
	KeyName = "name"
	KeyData = "data"
)

// Document is one dataset's persisted configuration.
type Document map[string]any

// Name returns the dataset name recorded in the document, or "" if unset.
func (d Document) Name() string {
	name, _ := d[KeyName].(string)
	return name
}

// SetName records the dataset name.
func (d Document) SetName(name string) {
	d[KeyName] = name
}

// Data returns a copy of the datatype map. ok is false when the document has no
// data key at all; an empty but present map returns ok true. Non-string entries
// are skipped; Validate reports them.
func (d Document) Data() (data map[string]string, ok bool) {
	raw, ok := d[KeyData]
	if !ok || raw == nil {
		return map[string]string{}, false
	}

	switch v := raw.(type) {
	case map[string]string:
		return maps.Clone(v), true
	case map[string]any:
		data = make(map[string]string, len(v))
		for k, p := range v {
			if s, isString := p.(string); isString {
				data[k] = s
			}
		}
		return data, true
	default:
		return map[string]string{}, false
	}
}

// Validate checks that data, when present, maps datatype names to path strings.
func (d Document) Validate() error {
	raw, ok := d[KeyData]
	if !ok || raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case map[string]string:
		return nil
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if _, isString := v[k].(string); !isString {
				return fmt.Errorf("data.%s: expected a path string, got %s", k, jsonKind(v[k]))
			}
		}
		return nil
	default:
		return fmt.Errorf("data: expected an object, got %s", jsonKind(raw))
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any, map[string]string:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// SetData replaces the datatype map.
func (d Document) SetData(data map[string]string) {
	if data == nil {
		data = map[string]string{}
	}
	d[KeyData] = maps.Clone(data)
}

// Datatypes returns the registered datatype names in lexicographic order.
func (d Document) Datatypes() []string {
	data, _ := d.Data()
	return slices.Sorted(maps.Keys(data))
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case map[string]string:
		return maps.Clone(val)
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return val
	}
}
