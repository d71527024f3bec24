package generator

import (
	"fmt"

	"github.com/goliatone/go-ruleschema/pkg/metadata"
)

// DiagnosticKind classifies advisory findings collected during conversion.
type DiagnosticKind string

const (
	// DiagnosticUnknownKind marks a rule whose kind has no converter. The rule
	// contributes an empty fragment.
	DiagnosticUnknownKind DiagnosticKind = "unknown-kind"
	// DiagnosticMissingType marks a custom or nested rule whose property has
	// no declared or hinted type.
	DiagnosticMissingType DiagnosticKind = "missing-type"
	// DiagnosticUnresolvedTarget marks a type-based rule whose declaring type
	// is only known by name.
	DiagnosticUnresolvedTarget DiagnosticKind = "unresolved-target"
)

// Diagnostic describes a rule that degraded to an empty contribution.
type Diagnostic struct {
	Kind       DiagnosticKind
	Definition string
	Rule       metadata.Rule
	Message    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s] %s", d.Definition, d.Rule, d.Kind, d.Message)
}
