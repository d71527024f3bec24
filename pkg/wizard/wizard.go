// Package wizard builds rule manifests interactively.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-ruleschema/pkg/collect"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
)

// Wizard asks for types, properties and rules until the user is done.
type Wizard struct {
	driver PromptDriver
	kinds  []string
}

// New constructs a Wizard using driver. A nil driver uses the terminal.
func New(driver PromptDriver) *Wizard {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	kinds := make([]string, 0, len(metadata.Kinds()))
	for _, kind := range metadata.Kinds() {
		kinds = append(kinds, string(kind))
	}
	return &Wizard{driver: driver, kinds: kinds}
}

// Run collects a manifest. The result is checked with manifest.Build before
// it is returned.
func (w *Wizard) Run(ctx context.Context) (manifest.Manifest, error) {
	var out manifest.Manifest
	declared := make(map[string]bool)

	for {
		spec, rules, err := w.askType(ctx, declared)
		if err != nil {
			return manifest.Manifest{}, err
		}
		declared[spec.Name] = true
		out.Types = append(out.Types, spec)
		out.Rules = append(out.Rules, rules...)

		more, err := w.driver.Confirm(ctx, ConfirmConfig{Message: "Add another type?"})
		if err != nil {
			return manifest.Manifest{}, err
		}
		if !more {
			break
		}
	}

	if _, err := manifest.Build(out); err != nil {
		return manifest.Manifest{}, err
	}
	return out, nil
}

func (w *Wizard) askType(ctx context.Context, declared map[string]bool) (manifest.TypeSpec, []manifest.RuleSpec, error) {
	name, err := w.driver.Input(ctx, InputConfig{
		Message: "Type name",
		Validator: func(value string) error {
			value = strings.TrimSpace(value)
			switch {
			case value == "":
				return fmt.Errorf("type name is required")
			case declared[value]:
				return fmt.Errorf("type %q already declared", value)
			}
			if _, primitive := metadata.PrimitiveFor(value); primitive {
				return fmt.Errorf("%q is a primitive type name", value)
			}
			return nil
		},
	})
	if err != nil {
		return manifest.TypeSpec{}, nil, err
	}
	spec := manifest.TypeSpec{Name: strings.TrimSpace(name)}

	if len(declared) > 0 {
		base, err := w.driver.Input(ctx, InputConfig{
			Message: "Base type",
			Help:    "Leave blank for none. Only types entered earlier can be used.",
			Validator: func(value string) error {
				value = strings.TrimSpace(value)
				if value != "" && !declared[value] {
					return fmt.Errorf("unknown type %q", value)
				}
				return nil
			},
		})
		if err != nil {
			return manifest.TypeSpec{}, nil, err
		}
		spec.Base = strings.TrimSpace(base)
	}

	var rules []manifest.RuleSpec
	for {
		property, err := w.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s property (blank to finish)", spec.Name),
		})
		if err != nil {
			return manifest.TypeSpec{}, nil, err
		}
		property = strings.TrimSpace(property)
		if property == "" {
			return spec, rules, nil
		}

		for {
			rule, err := w.askRule(ctx, spec.Name, property)
			if err != nil {
				return manifest.TypeSpec{}, nil, err
			}
			rules = append(rules, rule)

			again, err := w.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add another rule to %s?", property)})
			if err != nil {
				return manifest.TypeSpec{}, nil, err
			}
			if !again {
				break
			}
		}
	}
}

func (w *Wizard) askRule(ctx context.Context, typeName, property string) (manifest.RuleSpec, error) {
	idx, err := w.driver.Select(ctx, SelectConfig{
		Message:  fmt.Sprintf("Rule kind for %s", property),
		Options:  w.kinds,
		PageSize: 15,
	})
	if err != nil {
		return manifest.RuleSpec{}, err
	}
	if idx < 0 || idx >= len(w.kinds) {
		return manifest.RuleSpec{}, fmt.Errorf("wizard: invalid kind selection %d", idx)
	}
	kind := metadata.Kind(w.kinds[idx])

	raw, err := w.driver.Input(ctx, InputConfig{
		Message: "Constraints",
		Help:    "Comma separated values, blank for none.",
	})
	if err != nil {
		return manifest.RuleSpec{}, err
	}

	each, err := w.driver.Confirm(ctx, ConfirmConfig{Message: "Apply to each element?"})
	if err != nil {
		return manifest.RuleSpec{}, err
	}

	rule := manifest.RuleSpec{Type: typeName, Property: property, Kind: string(kind), Each: each}
	if raw = strings.TrimSpace(raw); raw != "" {
		rule.Constraints = collect.ParseArgs(kind, raw)
	}
	return rule, nil
}
