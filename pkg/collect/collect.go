// Package collect derives registry types and validation rules from Go struct
// definitions and their `rule` tags.
//
//	type User struct {
//		Base
//		Email string   `json:"email" rule:"is-email;max-length=120"`
//		Tags  []string `json:"tags" rule:"array-unique;each:min-length=2"`
//	}
//
// Embedded structs become base types. Property names follow the json tag when
// present. Constraint values after "=" are separated by ","; numbers and
// booleans are converted, anything else stays a string.
package collect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-ruleschema/pkg/metadata"
)

// TagName is the struct tag read by the collector.
const TagName = "rule"

const eachPrefix = "each:"

// Collector walks struct types and records them in a registry. It is safe
// for concurrent use.
type Collector struct {
	mu       sync.Mutex
	registry *metadata.Registry
	types    map[reflect.Type]*metadata.Type
	rules    []metadata.Rule
}

// New creates a collector writing into registry. A nil registry gets a fresh
// one.
func New(registry *metadata.Registry) *Collector {
	if registry == nil {
		registry = metadata.NewRegistry()
	}
	return &Collector{
		registry: registry,
		types:    make(map[reflect.Type]*metadata.Type),
	}
}

// Registry returns the registry the collector writes into.
func (c *Collector) Registry() *metadata.Registry {
	return c.registry
}

// Rules returns a copy of the rules collected so far, in collection order.
func (c *Collector) Rules() []metadata.Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]metadata.Rule(nil), c.rules...)
}

// Add collects the struct type of each value (struct or pointer to struct).
func (c *Collector) Add(values ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, value := range values {
		rt := reflect.TypeOf(value)
		for rt != nil && rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt == nil || rt.Kind() != reflect.Struct {
			return fmt.Errorf("collect: expected struct, got %T", value)
		}
		if _, err := c.collect(rt); err != nil {
			return err
		}
	}
	return nil
}

// Collect is a one-shot helper returning the registry and rules for values.
func Collect(values ...any) (*metadata.Registry, []metadata.Rule, error) {
	c := New(nil)
	if err := c.Add(values...); err != nil {
		return nil, nil, err
	}
	return c.Registry(), c.Rules(), nil
}

func (c *Collector) collect(rt reflect.Type) (*metadata.Type, error) {
	if typ, ok := c.types[rt]; ok {
		return typ, nil
	}

	var base *metadata.Type
	for idx := 0; idx < rt.NumField(); idx++ {
		field := rt.Field(idx)
		if !field.Anonymous || indirect(field.Type).Kind() != reflect.Struct {
			continue
		}
		parent, err := c.collect(indirect(field.Type))
		if err != nil {
			return nil, err
		}
		if base != nil {
			return nil, fmt.Errorf("collect: %s embeds more than one struct", rt.Name())
		}
		base = parent
	}

	name := rt.Name()
	if name == "" {
		return nil, fmt.Errorf("collect: anonymous struct types are not supported")
	}
	typ, err := c.registry.Define(name, base)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	c.types[rt] = typ

	for idx := 0; idx < rt.NumField(); idx++ {
		field := rt.Field(idx)
		if field.Anonymous || !field.IsExported() {
			continue
		}
		property, skip := propertyName(field)
		if skip {
			continue
		}
		if err := c.declare(typ, property, field.Type); err != nil {
			return nil, err
		}
		rules, err := parseTag(typ, property, field.Tag.Get(TagName))
		if err != nil {
			return nil, fmt.Errorf("collect: %s.%s: %w", name, field.Name, err)
		}
		c.rules = append(c.rules, rules...)
	}
	return typ, nil
}

var timeType = reflect.TypeOf(time.Time{})

// declare records the declared type of a field and, for slices of structs,
// the element type hint.
func (c *Collector) declare(owner *metadata.Type, property string, ft reflect.Type) error {
	ft = indirect(ft)
	switch ft.Kind() {
	case reflect.Slice, reflect.Array:
		elem := indirect(ft.Elem())
		if elem.Kind() == reflect.Struct && elem != timeType {
			typ, err := c.collect(elem)
			if err != nil {
				return err
			}
			c.registry.HintElementType(owner, property, typ)
			return nil
		}
		if prim := primitiveOf(elem); prim != nil {
			c.registry.HintElementType(owner, property, prim)
		}
		return nil
	case reflect.Struct:
		if ft == timeType {
			c.registry.DeclareProperty(owner, property, metadata.String)
			return nil
		}
		typ, err := c.collect(ft)
		if err != nil {
			return err
		}
		c.registry.DeclareProperty(owner, property, typ)
		return nil
	}
	if prim := primitiveOf(ft); prim != nil {
		c.registry.DeclareProperty(owner, property, prim)
	}
	return nil
}

func primitiveOf(rt reflect.Type) *metadata.Type {
	switch rt.Kind() {
	case reflect.String:
		return metadata.String
	case reflect.Bool:
		return metadata.Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return metadata.Number
	default:
		return nil
	}
}

func indirect(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

// propertyName resolves the json name of a field. Fields tagged json:"-" are
// skipped unless they carry rules.
func propertyName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", field.Tag.Get(TagName) == ""
	}
	if name == "" {
		return field.Name, false
	}
	return name, false
}

// parseTag turns `is-email;each:min-length=2;length=1,10` into rules.
func parseTag(owner *metadata.Type, property, tag string) ([]metadata.Rule, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "-" {
		return nil, nil
	}
	if property == "" {
		return nil, fmt.Errorf("rules on a field without a property name")
	}

	var rules []metadata.Rule
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		each := false
		if strings.HasPrefix(part, eachPrefix) {
			each = true
			part = strings.TrimSpace(strings.TrimPrefix(part, eachPrefix))
		}
		kindName, rawArgs, hasArgs := strings.Cut(part, "=")
		kind := metadata.Kind(strings.TrimSpace(kindName))
		if kind == "" {
			return nil, fmt.Errorf("empty rule kind in %q", tag)
		}

		var constraints []any
		if hasArgs {
			constraints = ParseArgs(kind, rawArgs)
		}
		rule := metadata.NewRule(owner, property, kind, constraints...)
		if each {
			rule = rule.ForEach()
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ParseArgs converts comma separated constraint text for kind. Membership
// kinds take the whole list as their single constraint; matches and contains
// keep the raw text so patterns may contain commas.
func ParseArgs(kind metadata.Kind, raw string) []any {
	switch kind {
	case metadata.KindMatches, metadata.KindContains, metadata.KindNotContains:
		return []any{raw}
	}

	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		values = append(values, scalar(strings.TrimSpace(part)))
	}

	switch kind {
	case metadata.KindIsIn, metadata.KindIsNotIn, metadata.KindArrayContains,
		metadata.KindArrayNotContains, metadata.KindIsEnum:
		return []any{values}
	}
	return values
}

func scalar(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
