package orchestrator

import (
	"context"

	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Transformer mutates generated definitions before they are sanitised and
// rendered. Implementations can rename definitions, inject annotations or
// drop entries.
type Transformer interface {
	Transform(ctx context.Context, defs map[string]schema.Fragment) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, defs map[string]schema.Fragment) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, defs map[string]schema.Fragment) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, defs)
}
