package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ruleschema/pkg/openapi"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Format names understood by the default registry.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatOpenAPI = "openapi"
)

// JSON writes the definitions map as indented JSON with sorted keys.
type JSON struct{}

func (JSON) Name() string        { return FormatJSON }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(ctx context.Context, defs map[string]schema.Fragment, _ RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(definitionsOrEmpty(defs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(payload, '\n'), nil
}

// YAML writes the definitions map as YAML.
type YAML struct{}

func (YAML) Name() string        { return FormatYAML }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Render(ctx context.Context, defs map[string]schema.Fragment, _ RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(definitionsOrEmpty(defs)); err != nil {
		return nil, fmt.Errorf("render yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("render yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// OpenAPI wraps the definitions in a validated OpenAPI 3.0 document.
// Definitions must be generated with openapi.RefPointerPrefix for their
// references to resolve.
type OpenAPI struct{}

func (OpenAPI) Name() string        { return FormatOpenAPI }
func (OpenAPI) ContentType() string { return "application/vnd.oai.openapi+json" }

func (OpenAPI) Render(ctx context.Context, defs map[string]schema.Fragment, options RenderOptions) ([]byte, error) {
	doc, err := openapi.Document(ctx, definitionsOrEmpty(defs), openapi.Info{
		Title:   options.Title,
		Version: options.Version,
	})
	if err != nil {
		return nil, err
	}
	if err := openapi.Validate(ctx, doc); err != nil {
		return nil, err
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("render openapi: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("render openapi: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func definitionsOrEmpty(defs map[string]schema.Fragment) map[string]schema.Fragment {
	if defs == nil {
		return map[string]schema.Fragment{}
	}
	return defs
}
