package render

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownFormat is wrapped by Get when no renderer answers to a format.
var ErrUnknownFormat = errors.New("render: unknown format")

// Registry maps output format names to renderers. It is safe for concurrent
// use; the orchestrator reads it on every request.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Renderer{}}
}

// Register files renderer under its Name. Names are claimed once.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	format := renderer.Name()
	if format == "" {
		return errors.New("render: renderer has no format name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[format]; taken {
		return fmt.Errorf("render: format %q is taken", format)
	}
	r.byName[format] = renderer
	return nil
}

// MustRegister is Register for wiring that cannot fail at runtime.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(format string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[format]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	return renderer, nil
}

// List returns the registered format names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byName))
}

// NewDefaultRegistry serves json, yaml and openapi.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, renderer := range []Renderer{JSON{}, YAML{}, OpenAPI{}} {
		r.MustRegister(renderer)
	}
	return r
}
