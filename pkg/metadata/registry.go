package metadata

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the explicit side-channel populated where types are declared. It
// stores type descriptors, declared property types, element-type hints and
// schema overrides, and satisfies TypeReflector, ElementTypeHints and
// OverrideStore. Conversion only reads from it.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]*Type
	props     map[propertyKey]*Type
	elements  map[propertyKey]*Type
	overrides map[propertyKey]Override
}

type propertyKey struct {
	target *Type
	name   string
}

var (
	_ TypeReflector    = (*Registry)(nil)
	_ ElementTypeHints = (*Registry)(nil)
	_ OverrideStore    = (*Registry)(nil)
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:     make(map[string]*Type),
		props:     make(map[propertyKey]*Type),
		elements:  make(map[propertyKey]*Type),
		overrides: make(map[propertyKey]Override),
	}
}

// Define registers an object type with an optional base. Duplicate names
// return an error.
func (r *Registry) Define(name string, base *Type) (*Type, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("metadata: type name is required")
	}
	if _, ok := PrimitiveFor(trimmed); ok {
		return nil, fmt.Errorf("metadata: %q is a primitive type name", trimmed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[trimmed]; exists {
		return nil, fmt.Errorf("metadata: type %q already defined", trimmed)
	}
	typ := NewType(trimmed, base)
	r.types[trimmed] = typ
	return typ, nil
}

// MustDefine panics on registration failure.
func (r *Registry) MustDefine(name string, base *Type) *Type {
	typ, err := r.Define(name, base)
	if err != nil {
		panic(err)
	}
	return typ
}

// Type looks a type up by name. Primitive names resolve to the shared
// primitive descriptors.
func (r *Registry) Type(name string) (*Type, bool) {
	trimmed := strings.TrimSpace(name)
	if prim, ok := PrimitiveFor(trimmed); ok {
		return prim, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.types[trimmed]
	return typ, ok
}

// Types returns the registered object types sorted by name.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Type, 0, len(r.types))
	for _, typ := range r.types {
		out = append(out, typ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeclareProperty records the declared type of target.property.
func (r *Registry) DeclareProperty(target *Type, property string, typ *Type) {
	if target == nil || typ == nil || strings.TrimSpace(property) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[propertyKey{target: target, name: property}] = typ
}

// HintElementType records the element type of a nested or array property.
func (r *Registry) HintElementType(target *Type, property string, typ *Type) {
	if target == nil || typ == nil || strings.TrimSpace(property) == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements[propertyKey{target: target, name: property}] = typ
}

// SetPropertyOverride attaches an override to target.property.
func (r *Registry) SetPropertyOverride(target *Type, property string, override Override) {
	if target == nil || override == nil || strings.TrimSpace(property) == "" {
		return
	}
	r.setOverride(propertyKey{target: target, name: property}, override)
}

// SetTypeOverride attaches an override to the whole definition of target.
func (r *Registry) SetTypeOverride(target *Type, override Override) {
	if target == nil || override == nil {
		return
	}
	r.setOverride(propertyKey{target: target, name: target.Name}, override)
}

func (r *Registry) setOverride(key propertyKey, override Override) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[key] = override
}

// PropertyType implements TypeReflector. Declarations are looked up on the
// type itself first and then along its base chain, so promoted properties
// resolve from subtypes.
func (r *Registry) PropertyType(target *Type, property string) (*Type, bool) {
	return r.lookup(r.props, target, property)
}

// ElementType implements ElementTypeHints.
func (r *Registry) ElementType(target *Type, property string) (*Type, bool) {
	return r.lookup(r.elements, target, property)
}

// Override implements OverrideStore. Lookups walk the base chain, so a
// subtype sees the property overrides attached to its ancestors. Type
// overrides are keyed by the type's own name and therefore stay local.
func (r *Registry) Override(target *Type, key string) (Override, bool) {
	if target == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for current := target; current != nil; current = current.Base {
		if override, ok := r.overrides[propertyKey{target: current, name: key}]; ok {
			return override, true
		}
	}
	return nil, false
}

func (r *Registry) lookup(table map[propertyKey]*Type, target *Type, property string) (*Type, bool) {
	if target == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for current := target; current != nil; current = current.Base {
		if typ, ok := table[propertyKey{target: current, name: property}]; ok {
			return typ, true
		}
	}
	return nil, false
}
