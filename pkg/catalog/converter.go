package catalog

import (
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Converter turns a single rule into a schema fragment. A nil fragment means
// the rule contributes no constraint.
type Converter interface {
	Convert(rule metadata.Rule, opts metadata.Options) schema.Fragment
}

// Static is a converter that always yields the same fragment.
type Static schema.Fragment

// Convert returns a copy of the static fragment.
func (s Static) Convert(metadata.Rule, metadata.Options) schema.Fragment {
	return schema.Fragment(s).Clone()
}

// Func adapts a function into a Converter.
type Func func(rule metadata.Rule, opts metadata.Options) schema.Fragment

// Convert calls the underlying function.
func (fn Func) Convert(rule metadata.Rule, opts metadata.Options) schema.Fragment {
	if fn == nil {
		return nil
	}
	return fn(rule, opts)
}

// Lookup resolves the converter for kind. Entries in additional shadow the
// built-in catalog for the exact same kind.
func Lookup(kind metadata.Kind, additional map[metadata.Kind]Converter) (Converter, bool) {
	if converter, ok := additional[kind]; ok && converter != nil {
		return converter, true
	}
	return Builtin(kind)
}

// Apply converts rule with the resolved converter and wraps the result for
// element rules. The boolean is false when no converter exists for the kind.
func Apply(rule metadata.Rule, opts metadata.Options, additional map[metadata.Kind]Converter) (schema.Fragment, bool) {
	converter, ok := Lookup(rule.Kind, additional)
	if !ok {
		return nil, false
	}
	fragment := converter.Convert(rule, opts)
	if rule.Each {
		return schema.ArrayOf(fragment), true
	}
	return fragment, true
}
