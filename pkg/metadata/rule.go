package metadata

import (
	"fmt"
	"strings"
)

// Rule is one constraint attached to a property of a declaring type (or to the
// type itself when Property is empty). Rules are produced by a collector and
// treated as immutable by the converters.
type Rule struct {
	Kind        Kind
	Target      Target
	Property    string
	Constraints []any
	// Each applies the rule to every element of an array-valued property.
	Each bool
}

// NewRule builds a rule for target.property.
func NewRule(target Target, property string, kind Kind, constraints ...any) Rule {
	return Rule{
		Kind:        kind,
		Target:      target,
		Property:    property,
		Constraints: constraints,
	}
}

// ForEach returns a copy of the rule applied to each array element.
func (r Rule) ForEach() Rule {
	r.Each = true
	return r
}

// TargetName returns the declaring type name or "" when the target is nil.
func (r Rule) TargetName() string {
	if r.Target == nil {
		return ""
	}
	return r.Target.TargetName()
}

// DeclaringType returns the resolvable declaring type, if any.
func (r Rule) DeclaringType() (*Type, bool) {
	return Resolve(r.Target)
}

// Constraint returns the constraint at idx or nil.
func (r Rule) Constraint(idx int) any {
	if idx < 0 || idx >= len(r.Constraints) {
		return nil
	}
	return r.Constraints[idx]
}

// IsObjectLevel reports whether the rule targets the whole type instead of a
// property.
func (r Rule) IsObjectLevel() bool {
	return strings.TrimSpace(r.Property) == ""
}

// String renders the rule for diagnostics.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.TargetName())
	if !r.IsObjectLevel() {
		b.WriteString(".")
		b.WriteString(r.Property)
	}
	fmt.Fprintf(&b, " %s", r.Kind)
	if r.Each {
		b.WriteString(" (each)")
	}
	return b.String()
}
