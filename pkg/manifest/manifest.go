package manifest

import (
	"fmt"
	"strings"
)

// Manifest is the declarative form of a rule set: the types involved, their
// declared property types, element-type hints, schema overrides and the rules
// themselves.
type Manifest struct {
	Options      Settings       `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Types        []TypeSpec     `json:"types,omitempty" yaml:"types,omitempty" mapstructure:"types"`
	ElementTypes []ElementSpec  `json:"elementTypes,omitempty" yaml:"elementTypes,omitempty" mapstructure:"elementTypes"`
	Overrides    []OverrideSpec `json:"overrides,omitempty" yaml:"overrides,omitempty" mapstructure:"overrides"`
	Rules        []RuleSpec     `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`
}

// Settings carries conversion and output options. CLI flags take precedence.
type Settings struct {
	RefPointerPrefix      string `json:"refPointerPrefix,omitempty" yaml:"refPointerPrefix,omitempty" mapstructure:"refPointerPrefix"`
	SkipMissingProperties bool   `json:"skipMissingProperties,omitempty" yaml:"skipMissingProperties,omitempty" mapstructure:"skipMissingProperties"`
	SanitizeDescriptions  bool   `json:"sanitizeDescriptions,omitempty" yaml:"sanitizeDescriptions,omitempty" mapstructure:"sanitizeDescriptions"`
	Title                 string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Version               string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
}

// TypeSpec declares an object type. Properties maps property names to type
// names; primitive names (string, number, boolean) are accepted.
type TypeSpec struct {
	Name       string            `json:"name" yaml:"name" mapstructure:"name"`
	Base       string            `json:"base,omitempty" yaml:"base,omitempty" mapstructure:"base"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
}

// ElementSpec hints the element type of a nested or array property.
type ElementSpec struct {
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Property string `json:"property" yaml:"property" mapstructure:"property"`
	Element  string `json:"element" yaml:"element" mapstructure:"element"`
}

// OverrideSpec attaches a raw schema fragment to a type (Property empty) or
// to one of its properties.
type OverrideSpec struct {
	Type     string         `json:"type" yaml:"type" mapstructure:"type"`
	Property string         `json:"property,omitempty" yaml:"property,omitempty" mapstructure:"property"`
	Schema   map[string]any `json:"schema" yaml:"schema" mapstructure:"schema"`
}

// RuleSpec is one validation rule. Type names that are not declared under
// types produce name-only targets.
type RuleSpec struct {
	Type        string `json:"type" yaml:"type" mapstructure:"type"`
	Property    string `json:"property,omitempty" yaml:"property,omitempty" mapstructure:"property"`
	Kind        string `json:"kind" yaml:"kind" mapstructure:"kind"`
	Constraints []any  `json:"constraints,omitempty" yaml:"constraints,omitempty" mapstructure:"constraints"`
	Each        bool   `json:"each,omitempty" yaml:"each,omitempty" mapstructure:"each"`
}

// Error reports malformed manifests. Path locates the offending entry, e.g.
// "rules[3].constraints[0]".
type Error struct {
	Path    string
	Message string
}

func (e Error) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid manifest"
	}
	if strings.TrimSpace(e.Path) == "" {
		return "manifest: " + msg
	}
	return fmt.Sprintf("manifest: %s (%s)", msg, e.Path)
}
