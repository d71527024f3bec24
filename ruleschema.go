// Package ruleschema converts validation rule metadata into JSON Schema object
// definitions.
//
// Rules can be declared in Go with struct tags (see pkg/collect), built
// directly with pkg/metadata, or loaded from a YAML/JSON manifest:
//
//	out, err := ruleschema.Generate(ctx, manifest.SourceFromFile("rules.yaml"), "openapi")
package ruleschema

import (
	"context"

	internalLoader "github.com/goliatone/go-ruleschema/internal/manifest/loader"
	internalParser "github.com/goliatone/go-ruleschema/internal/manifest/parser"
	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/orchestrator"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// Version of the module, reported by the CLI.
const Version = "0.1.0"

// NewLoader constructs a manifest loader using the internal implementation.
func NewLoader(options ...manifest.LoaderOption) manifest.Loader {
	return internalLoader.New(manifest.NewLoaderOptions(options...))
}

// NewParser constructs the YAML/JSON manifest parser.
func NewParser() manifest.Parser {
	return internalParser.New()
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Convert generates one definition per type that declares rules.
func Convert(rules []metadata.Rule, options ...generator.Option) map[string]schema.Fragment {
	return generator.Convert(rules, options...)
}

// LoadManifest reads, parses and resolves the manifest at src.
func LoadManifest(ctx context.Context, src manifest.Source, options ...manifest.LoaderOption) (manifest.Bundle, error) {
	gen := orchestrator.New(orchestrator.WithLoaderOptions(options...))
	return gen.Load(ctx, orchestrator.Request{Source: src})
}

// Generate loads the manifest at src and renders its definitions in the named
// format (json, yaml or openapi).
func Generate(ctx context.Context, src manifest.Source, format string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{Source: src, Renderer: format})
}
