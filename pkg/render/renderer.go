package render

import (
	"context"

	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Renderer serialises generated definitions into an output document.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, defs map[string]schema.Fragment, options RenderOptions) ([]byte, error)
}
