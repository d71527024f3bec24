package catalog

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"time"

	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// dateJSONLayout matches the ISO form JavaScript dates serialise to.
const dateJSONLayout = "2006-01-02T15:04:05.000Z"

// constraintSchema maps a primitive constraint value onto {"type": ...}.
// Non-primitive values (lists, maps, structs, nil) yield nil.
func constraintSchema(value any) schema.Fragment {
	if value == nil {
		return nil
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.String:
		return schema.OfType(schema.TypeString)
	case reflect.Bool:
		return schema.OfType(schema.TypeBoolean)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return schema.OfType(schema.TypeNumber)
	default:
		return nil
	}
}

// targetSchema maps a resolved type onto a primitive fragment or a $ref to its
// definition.
func targetSchema(typ *metadata.Type, opts metadata.Options) schema.Fragment {
	if typ == nil {
		return nil
	}
	if typ.IsPrimitive() {
		return schema.OfType(string(typ.Primitive))
	}
	return opts.Ref(typ)
}

// listValues converts any slice or array constraint into []any.
func listValues(value any) ([]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case []any:
		return append([]any(nil), typed...), true
	case []string:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = item
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

// enumKeys lists the member names of an enum constraint. Maps contribute their
// keys in sorted order; lists contribute their members rendered as strings.
func enumKeys(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, fmt.Sprint(iter.Key().Interface()))
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for idx, key := range keys {
			out[idx] = key
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			out[idx] = fmt.Sprint(rv.Index(idx).Interface())
		}
		return out
	default:
		return nil
	}
}

// dateJSON renders a date constraint the way a JSON-serialised date looks.
// Strings are assumed to already be serialised.
func dateJSON(value any) (string, bool) {
	switch typed := value.(type) {
	case time.Time:
		return typed.UTC().Format(dateJSONLayout), true
	case *time.Time:
		if typed == nil {
			return "", false
		}
		return typed.UTC().Format(dateJSONLayout), true
	case string:
		return typed, true
	default:
		return "", false
	}
}

// patternSource extracts a regular expression source from a constraint.
func patternSource(value any) (string, bool) {
	switch typed := value.(type) {
	case *regexp.Regexp:
		if typed == nil {
			return "", false
		}
		return typed.String(), true
	case string:
		return typed, true
	case fmt.Stringer:
		return typed.String(), true
	default:
		return "", false
	}
}

// isIPv6 reports whether the is-ip version constraint selects IPv6. Both the
// string "6" and the number 6 are accepted.
func isIPv6(value any) bool {
	switch typed := value.(type) {
	case string:
		return typed == "6"
	case nil:
		return false
	}
	if constraintSchema(value).Type() != schema.TypeNumber {
		return false
	}
	return fmt.Sprint(value) == "6"
}

// withEnum copies base and sets its enum keyword.
func withEnum(base schema.Fragment, values []any) schema.Fragment {
	out := base.Clone()
	out[schema.KeyEnum] = values
	return out
}

func dateAlternatives() []any {
	return []any{
		schema.Fragment{"format": "date", schema.KeyType: schema.TypeString},
		schema.Fragment{"format": "date-time", schema.KeyType: schema.TypeString},
	}
}

func stringPattern(pattern string) schema.Fragment {
	return schema.Fragment{"pattern": pattern, schema.KeyType: schema.TypeString}
}

func stringFormat(format string) schema.Fragment {
	return schema.Fragment{"format": format, schema.KeyType: schema.TypeString}
}

func anyItems(extra schema.Fragment) schema.Fragment {
	out := schema.Fragment{schema.KeyItems: schema.Fragment{}, schema.KeyType: schema.TypeArray}
	for key, value := range extra {
		out[key] = value
	}
	return out
}
