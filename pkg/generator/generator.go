package generator

import (
	"log/slog"
	"sort"

	"github.com/goliatone/go-ruleschema/internal/logging"
	"github.com/goliatone/go-ruleschema/pkg/catalog"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Result holds the generated definitions keyed by type name plus advisory
// diagnostics for rules that degraded to an empty contribution.
type Result struct {
	Definitions map[string]schema.Fragment
	Diagnostics []Diagnostic
}

// Names returns the definition names in sorted order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r.Definitions))
	for name := range r.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generator converts validation rules into JSON Schema object definitions.
// It holds no mutable state and may be shared between goroutines.
type Generator struct {
	options Options
	logger  *slog.Logger
}

// New constructs a Generator from DefaultOptions and the supplied overrides.
func New(options ...Option) *Generator {
	opts := DefaultOptions().Apply(options...)
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{options: opts, logger: logger}
}

// Convert is a shortcut for New(options...).Generate(rules).Definitions.
func Convert(rules []metadata.Rule, options ...Option) map[string]schema.Fragment {
	return New(options...).Generate(rules).Definitions
}

// Options returns the resolved configuration.
func (g *Generator) Options() Options {
	return g.options
}

// Generate groups rules by declaring type name and builds one object
// definition per group. Types only appear when at least one rule is declared
// on them directly. Generate never fails: unknown kinds and unresolvable types
// are recorded as diagnostics.
func (g *Generator) Generate(rules []metadata.Rule) Result {
	result := Result{Definitions: make(map[string]schema.Fragment)}
	meta := g.options.Metadata()

	names, groups := groupByTarget(rules)
	for _, name := range names {
		own := groups[name]
		target := own[0].Target
		combined := append(append([]metadata.Rule(nil), own...), InheritedRules(target, rules)...)

		properties := schema.Fragment{}
		propertyNames, byProperty := groupByProperty(combined)
		for _, property := range propertyNames {
			fragment := g.convertProperty(name, byProperty[property], meta, &result.Diagnostics)
			properties[property] = ApplyOverride(fragment, target, property, meta)
		}

		definition := schema.Fragment{
			schema.KeyProperties: properties,
			schema.KeyType:       schema.TypeObject,
		}
		if required := RequiredProperties(target, combined, g.options.SkipMissingProperties); len(required) > 0 {
			list := make([]any, len(required))
			for idx, property := range required {
				list[idx] = property
			}
			definition[schema.KeyRequired] = list
		}

		result.Definitions[name] = ApplyOverride(definition, target, name, meta)
	}
	return result
}

// convertProperty converts each rule of one property and merges the results
// in rule order.
func (g *Generator) convertProperty(definition string, rules []metadata.Rule, meta metadata.Options, diagnostics *[]Diagnostic) schema.Fragment {
	fragments := make([]schema.Fragment, 0, len(rules))
	for _, rule := range rules {
		fragment, ok := catalog.Apply(rule, meta, g.options.AdditionalConverters)
		if !ok {
			g.record(diagnostics, Diagnostic{
				Kind:       DiagnosticUnknownKind,
				Definition: definition,
				Rule:       rule,
				Message:    "no schema converter for rule kind",
			})
			fragments = append(fragments, schema.Fragment{})
			continue
		}
		if fragment == nil || (rule.Each && fragment[schema.KeyItems] == nil) {
			g.checkTypeResolution(definition, rule, meta, diagnostics)
		}
		fragments = append(fragments, fragment)
	}
	return schema.Merge(fragments...)
}

func (g *Generator) checkTypeResolution(definition string, rule metadata.Rule, meta metadata.Options, diagnostics *[]Diagnostic) {
	if rule.Kind != metadata.KindCustomValidation && rule.Kind != metadata.KindNestedValidation {
		return
	}
	if _, shadowed := g.options.AdditionalConverters[rule.Kind]; shadowed {
		return
	}
	target, ok := rule.DeclaringType()
	if !ok {
		g.record(diagnostics, Diagnostic{
			Kind:       DiagnosticUnresolvedTarget,
			Definition: definition,
			Rule:       rule,
			Message:    "declaring type is not resolvable",
		})
		return
	}
	if _, ok := meta.ElementType(target, rule.Property); ok {
		return
	}
	if _, ok := meta.PropertyType(target, rule.Property); ok {
		return
	}
	g.record(diagnostics, Diagnostic{
		Kind:       DiagnosticMissingType,
		Definition: definition,
		Rule:       rule,
		Message:    "property has no declared type",
	})
}

func (g *Generator) record(diagnostics *[]Diagnostic, diag Diagnostic) {
	*diagnostics = append(*diagnostics, diag)
	g.logger.Debug("rule skipped",
		"definition", diag.Definition,
		"rule", diag.Rule.String(),
		"reason", string(diag.Kind),
	)
}

// groupByTarget buckets rules by declaring type name, preserving first
// appearance. Rules without a target are ignored.
func groupByTarget(rules []metadata.Rule) ([]string, map[string][]metadata.Rule) {
	var names []string
	groups := make(map[string][]metadata.Rule)
	for _, rule := range rules {
		if rule.Target == nil {
			continue
		}
		name := rule.TargetName()
		if _, seen := groups[name]; !seen {
			names = append(names, name)
		}
		groups[name] = append(groups[name], rule)
	}
	return names, groups
}
