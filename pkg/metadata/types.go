package metadata

import "strings"

// Target identifies the type a rule was declared on. *Type is the resolvable
// implementation; Name is used when upstream metadata only carries a label and
// the declaring type cannot be resolved further.
type Target interface {
	TargetName() string
}

// Name is an unresolvable target. Rules attributed to a Name are grouped and
// converted by their literal property name and kind, but inheritance and
// type-based resolution are skipped for them.
type Name string

// TargetName returns the label.
func (n Name) TargetName() string {
	return string(n)
}

// Primitive enumerates the JSON primitive a type maps onto. Object types use
// the zero value.
type Primitive string

const (
	PrimitiveNone    Primitive = ""
	PrimitiveString  Primitive = "string"
	PrimitiveNumber  Primitive = "number"
	PrimitiveBoolean Primitive = "boolean"
)

// Type describes a validated type (or a primitive). Base points at the parent
// type for single inheritance; embedding in Go structs is mapped onto it.
type Type struct {
	Name      string
	Base      *Type
	Primitive Primitive
}

// Built-in primitive descriptors used by property type declarations.
var (
	String  = &Type{Name: "string", Primitive: PrimitiveString}
	Number  = &Type{Name: "number", Primitive: PrimitiveNumber}
	Boolean = &Type{Name: "boolean", Primitive: PrimitiveBoolean}
)

// NewType constructs an object type with an optional base.
func NewType(name string, base *Type) *Type {
	return &Type{Name: strings.TrimSpace(name), Base: base}
}

// TargetName returns the type name.
func (t *Type) TargetName() string {
	if t == nil {
		return ""
	}
	return t.Name
}

// IsPrimitive reports whether the type maps onto a JSON primitive.
func (t *Type) IsPrimitive() bool {
	return t != nil && t.Primitive != PrimitiveNone
}

// IsSubtypeOf reports whether ancestor appears in the strict base chain of t.
// A type is never a subtype of itself.
func (t *Type) IsSubtypeOf(ancestor *Type) bool {
	if t == nil || ancestor == nil {
		return false
	}
	for current := t.Base; current != nil; current = current.Base {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Ancestors returns the base chain from the direct parent upwards.
func (t *Type) Ancestors() []*Type {
	if t == nil {
		return nil
	}
	var out []*Type
	for current := t.Base; current != nil; current = current.Base {
		out = append(out, current)
	}
	return out
}

// PrimitiveFor maps a primitive name ("string", "number", "boolean") onto the
// shared descriptor.
func PrimitiveFor(name string) (*Type, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "symbol":
		return String, true
	case "number", "integer", "float", "int":
		return Number, true
	case "boolean", "bool":
		return Boolean, true
	default:
		return nil, false
	}
}

// Resolve returns the *Type behind a target, if any.
func Resolve(target Target) (*Type, bool) {
	typed, ok := target.(*Type)
	if !ok || typed == nil {
		return nil, false
	}
	return typed, true
}
