package metadata

import "github.com/goliatone/go-ruleschema/pkg/schema"

// DefaultRefPointerPrefix is prepended to type names when emitting $ref
// pointers to nested definitions.
const DefaultRefPointerPrefix = "#/definitions/"

// Options is the read-only conversion state handed to converters and
// override functions.
type Options struct {
	// RefPointerPrefix prefixes $ref pointers emitted for nested types.
	RefPointerPrefix string
	// SkipMissingProperties switches required-field inference to the
	// opt-in policy: only affirmative presence rules mark a property required.
	SkipMissingProperties bool
	// Types resolves declared property types.
	Types TypeReflector
	// ElementTypes resolves element types of nested or array properties. It is
	// consulted before Types for nested validation.
	ElementTypes ElementTypeHints
	// Overrides stores raw schema overrides keyed by type and property.
	Overrides OverrideStore
}

// Ref builds a $ref fragment pointing at the definition for typ.
func (o Options) Ref(typ *Type) schema.Fragment {
	return schema.Ref(o.RefPointerPrefix + typ.Name)
}

// PropertyType resolves the declared type of target.property.
func (o Options) PropertyType(target *Type, property string) (*Type, bool) {
	if o.Types == nil || target == nil {
		return nil, false
	}
	return o.Types.PropertyType(target, property)
}

// ElementType resolves an explicit element-type hint for target.property.
func (o Options) ElementType(target *Type, property string) (*Type, bool) {
	if o.ElementTypes == nil || target == nil {
		return nil, false
	}
	return o.ElementTypes.ElementType(target, property)
}

// Override looks up an override for target under key.
func (o Options) Override(target *Type, key string) (Override, bool) {
	if o.Overrides == nil || target == nil {
		return nil, false
	}
	return o.Overrides.Override(target, key)
}
