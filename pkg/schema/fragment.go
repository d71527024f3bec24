package schema

import (
	"reflect"
	"sort"
)

// Fragment is a partial JSON Schema object. Values are JSON-compatible: nested
// Fragment or map[string]any objects, []any arrays, strings, numbers, booleans
// and nil.
type Fragment map[string]any

// Common keyword names used when assembling fragments.
const (
	KeyType        = "type"
	KeyRef         = "$ref"
	KeyItems       = "items"
	KeyProperties  = "properties"
	KeyRequired    = "required"
	KeyEnum        = "enum"
	KeyDescription = "description"
	KeyTitle       = "title"
)

// JSON Schema primitive type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Clone returns a deep copy of the fragment. Nested map[string]any values are
// cloned as Fragment so callers can type-assert on a single map type.
func (f Fragment) Clone() Fragment {
	if f == nil {
		return nil
	}
	out := make(Fragment, len(f))
	for key, value := range f {
		out[key] = cloneValue(value)
	}
	return out
}

// Type returns the "type" keyword when it holds a string.
func (f Fragment) Type() string {
	value, _ := f[KeyType].(string)
	return value
}

// Keys returns the fragment keys in sorted order.
func (f Fragment) Keys() []string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the nested object stored under key, if any.
func (f Fragment) Object(key string) (Fragment, bool) {
	return AsFragment(f[key])
}

// AsFragment normalises map-shaped values into a Fragment.
func AsFragment(value any) (Fragment, bool) {
	switch typed := value.(type) {
	case Fragment:
		return typed, true
	case map[string]any:
		return Fragment(typed), true
	default:
		return nil, false
	}
}

// Ref builds a {"$ref": pointer} fragment.
func Ref(pointer string) Fragment {
	return Fragment{KeyRef: pointer}
}

// OfType builds a {"type": name} fragment.
func OfType(name string) Fragment {
	return Fragment{KeyType: name}
}

// ArrayOf wraps an element fragment as {"items": items, "type": "array"}. A
// nil element keeps the array type without an items keyword.
func ArrayOf(items Fragment) Fragment {
	if items == nil {
		return Fragment{KeyType: TypeArray}
	}
	return Fragment{KeyItems: items, KeyType: TypeArray}
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case Fragment:
		return typed.Clone()
	case map[string]any:
		return Fragment(typed).Clone()
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = item
		}
		return out
	default:
		return cloneSlice(value)
	}
}

// cloneSlice converts typed slices ([]int, []float64, ...) into []any so the
// merge code only ever deals with one array representation.
func cloneSlice(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return value
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return value
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = cloneValue(rv.Index(idx).Interface())
	}
	return out
}
