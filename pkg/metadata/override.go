package metadata

import "github.com/goliatone/go-ruleschema/pkg/schema"

// Override adjusts a generated fragment. Property overrides are keyed by
// property name; type overrides are keyed by the type name.
type Override interface {
	Apply(base schema.Fragment, opts Options) schema.Fragment
}

// StaticOverride is deep-merged over the generated fragment; override fields
// win.
type StaticOverride schema.Fragment

// Apply merges the static fragment over base.
func (o StaticOverride) Apply(base schema.Fragment, _ Options) schema.Fragment {
	return schema.Merge(base, schema.Fragment(o))
}

// OverrideFunc receives the generated fragment and returns its replacement
// verbatim.
type OverrideFunc func(base schema.Fragment, opts Options) schema.Fragment

// Apply calls the function.
func (fn OverrideFunc) Apply(base schema.Fragment, opts Options) schema.Fragment {
	if fn == nil {
		return base
	}
	return fn(base, opts)
}

// OverrideStore looks up overrides attached to a type. The key is either a
// property name or the type's own name for whole-definition overrides.
type OverrideStore interface {
	Override(target *Type, key string) (Override, bool)
}

// TypeReflector resolves the declared type of a property.
type TypeReflector interface {
	PropertyType(target *Type, property string) (*Type, bool)
}

// ElementTypeHints resolves explicit element types, typically for array
// properties whose element type cannot be derived from the declaration.
type ElementTypeHints interface {
	ElementType(target *Type, property string) (*Type, bool)
}
