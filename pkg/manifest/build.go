package manifest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Bundle is a manifest resolved into the types the generator consumes.
type Bundle struct {
	Registry *metadata.Registry
	Rules    []metadata.Rule
	Settings Settings
}

// GeneratorOptions wires the bundle's registry and settings into generator
// options.
func (b Bundle) GeneratorOptions() []generator.Option {
	return []generator.Option{
		generator.WithRegistry(b.Registry),
		generator.WithRefPointerPrefix(b.Settings.RefPointerPrefix),
		generator.WithSkipMissingProperties(b.Settings.SkipMissingProperties),
	}
}

// Build resolves the manifest into a registry and rule list. Types are defined
// base-first regardless of declaration order; unknown bases, inheritance
// cycles and undeclared property types are reported as Error values.
func Build(m Manifest) (Bundle, error) {
	registry := metadata.NewRegistry()

	specs := make(map[string]int, len(m.Types))
	for idx, spec := range m.Types {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return Bundle{}, Error{Path: fmt.Sprintf("types[%d].name", idx), Message: "type name is required"}
		}
		if _, primitive := metadata.PrimitiveFor(name); primitive {
			return Bundle{}, Error{Path: fmt.Sprintf("types[%d].name", idx), Message: fmt.Sprintf("%q is a primitive type name", name)}
		}
		if _, dup := specs[name]; dup {
			return Bundle{}, Error{Path: fmt.Sprintf("types[%d].name", idx), Message: fmt.Sprintf("duplicate type %q", name)}
		}
		specs[name] = idx
	}

	defining := make(map[string]bool)
	var define func(name string) (*metadata.Type, error)
	define = func(name string) (*metadata.Type, error) {
		if typ, ok := registry.Type(name); ok {
			return typ, nil
		}
		idx := specs[name]
		if defining[name] {
			return nil, Error{Path: fmt.Sprintf("types[%d].base", idx), Message: fmt.Sprintf("inheritance cycle through %q", name)}
		}
		defining[name] = true
		defer delete(defining, name)

		var base *metadata.Type
		if baseName := strings.TrimSpace(m.Types[idx].Base); baseName != "" {
			if _, ok := specs[baseName]; !ok {
				return nil, Error{Path: fmt.Sprintf("types[%d].base", idx), Message: fmt.Sprintf("unknown base type %q", baseName)}
			}
			resolved, err := define(baseName)
			if err != nil {
				return nil, err
			}
			base = resolved
		}
		typ, err := registry.Define(name, base)
		if err != nil {
			return nil, Error{Path: fmt.Sprintf("types[%d].name", idx), Message: err.Error()}
		}
		return typ, nil
	}

	for _, spec := range m.Types {
		if _, err := define(strings.TrimSpace(spec.Name)); err != nil {
			return Bundle{}, err
		}
	}

	lookup := func(path, name string) (*metadata.Type, error) {
		typ, ok := registry.Type(name)
		if !ok {
			return nil, Error{Path: path, Message: fmt.Sprintf("unknown type %q", name)}
		}
		return typ, nil
	}

	for idx, spec := range m.Types {
		owner, _ := registry.Type(spec.Name)
		props := make([]string, 0, len(spec.Properties))
		for prop := range spec.Properties {
			props = append(props, prop)
		}
		sort.Strings(props)
		for _, prop := range props {
			typ, err := lookup(fmt.Sprintf("types[%d].properties.%s", idx, prop), spec.Properties[prop])
			if err != nil {
				return Bundle{}, err
			}
			registry.DeclareProperty(owner, prop, typ)
		}
	}

	for idx, spec := range m.ElementTypes {
		owner, err := lookup(fmt.Sprintf("elementTypes[%d].type", idx), spec.Type)
		if err != nil {
			return Bundle{}, err
		}
		element, err := lookup(fmt.Sprintf("elementTypes[%d].element", idx), spec.Element)
		if err != nil {
			return Bundle{}, err
		}
		if strings.TrimSpace(spec.Property) == "" {
			return Bundle{}, Error{Path: fmt.Sprintf("elementTypes[%d].property", idx), Message: "property is required"}
		}
		registry.HintElementType(owner, spec.Property, element)
	}

	for idx, spec := range m.Overrides {
		owner, err := lookup(fmt.Sprintf("overrides[%d].type", idx), spec.Type)
		if err != nil {
			return Bundle{}, err
		}
		override := metadata.StaticOverride(schema.Fragment(spec.Schema).Clone())
		if strings.TrimSpace(spec.Property) == "" {
			registry.SetTypeOverride(owner, override)
			continue
		}
		registry.SetPropertyOverride(owner, spec.Property, override)
	}

	rules := make([]metadata.Rule, 0, len(m.Rules))
	for idx, spec := range m.Rules {
		rule, err := buildRule(registry, spec, fmt.Sprintf("rules[%d]", idx))
		if err != nil {
			return Bundle{}, err
		}
		rules = append(rules, rule)
	}

	return Bundle{Registry: registry, Rules: rules, Settings: m.Options}, nil
}

func buildRule(registry *metadata.Registry, spec RuleSpec, path string) (metadata.Rule, error) {
	typeName := strings.TrimSpace(spec.Type)
	if typeName == "" {
		return metadata.Rule{}, Error{Path: path + ".type", Message: "type is required"}
	}
	kind := metadata.Kind(strings.TrimSpace(spec.Kind))
	if kind == "" {
		return metadata.Rule{}, Error{Path: path + ".kind", Message: "kind is required"}
	}

	var target metadata.Target = metadata.Name(typeName)
	if typ, ok := registry.Type(typeName); ok && !typ.IsPrimitive() {
		target = typ
	}

	constraints, err := decodeConstraints(kind, spec.Constraints, path+".constraints")
	if err != nil {
		return metadata.Rule{}, err
	}

	rule := metadata.NewRule(target, strings.TrimSpace(spec.Property), kind, constraints...)
	if spec.Each {
		rule = rule.ForEach()
	}
	return rule, nil
}

// decodeConstraints converts manifest scalars into the values converters
// expect: compiled patterns for matches and timestamps for date bounds.
func decodeConstraints(kind metadata.Kind, raw []any, path string) ([]any, error) {
	out := append([]any(nil), raw...)
	if len(out) == 0 {
		return out, nil
	}
	switch kind {
	case metadata.KindMatches:
		source, ok := out[0].(string)
		if !ok {
			return nil, Error{Path: path + "[0]", Message: "matches expects a pattern string"}
		}
		compiled, err := regexp.Compile(source)
		if err != nil {
			return nil, Error{Path: path + "[0]", Message: fmt.Sprintf("invalid pattern: %v", err)}
		}
		out[0] = compiled
	case metadata.KindMinDate, metadata.KindMaxDate:
		switch value := out[0].(type) {
		case time.Time:
		case string:
			parsed, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, Error{Path: path + "[0]", Message: fmt.Sprintf("invalid date: %v", err)}
			}
			out[0] = parsed
		default:
			return nil, Error{Path: path + "[0]", Message: "date bound expects an RFC 3339 timestamp"}
		}
	}
	return out, nil
}
