package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-ruleschema/internal/logging"
	internalLoader "github.com/goliatone/go-ruleschema/internal/manifest/loader"
	internalParser "github.com/goliatone/go-ruleschema/internal/manifest/parser"
	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/openapi"
	"github.com/goliatone/go-ruleschema/pkg/render"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

const defaultRendererName = render.FormatJSON

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom manifest loader.
func WithLoader(loader manifest.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithLoaderOptions configures the built-in loader. Ignored when WithLoader
// is also supplied.
func WithLoaderOptions(options ...manifest.LoaderOption) Option {
	return func(o *Orchestrator) {
		o.loaderOptions = append(o.loaderOptions, options...)
	}
}

// WithParser injects a custom manifest parser.
func WithParser(parser manifest.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithGeneratorOptions registers generator options applied to every request
// after the manifest settings.
func WithGeneratorOptions(options ...generator.Option) Option {
	return func(o *Orchestrator) {
		o.generatorOptions = append(o.generatorOptions, options...)
	}
}

// WithTransformer registers a Transformer run after generation.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger sets the logger shared with the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the pipeline from manifest source to rendered
// definitions.
type Orchestrator struct {
	loader           manifest.Loader
	loaderOptions    []manifest.LoaderOption
	parser           manifest.Parser
	registry         *render.Registry
	defaultRenderer  string
	generatorOptions []generator.Option
	transformer      Transformer
	logger           *slog.Logger
}

// New constructs an Orchestrator. Missing dependencies are initialised with
// the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a single conversion.
type Request struct {
	// Source identifies where the manifest lives. Optional when Document is
	// supplied.
	Source manifest.Source

	// Document bypasses the loader when the payload is already in memory.
	Document *manifest.Document

	// Renderer names the output format. Empty selects the default renderer.
	Renderer string

	// RenderOptions fill the info block of wrapping documents. Empty fields
	// fall back to the manifest settings.
	RenderOptions render.RenderOptions

	// Options are applied last and win over manifest settings.
	Options []generator.Option

	// Sanitize strips markup from annotations even when the manifest does
	// not ask for it.
	Sanitize bool
}

// Load resolves the request into a manifest bundle.
func (o *Orchestrator) Load(ctx context.Context, req Request) (manifest.Bundle, error) {
	if ctx == nil {
		return manifest.Bundle{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return manifest.Bundle{}, err
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return manifest.Bundle{}, err
	}
	parsed, err := o.parser.Parse(ctx, doc)
	if err != nil {
		return manifest.Bundle{}, fmt.Errorf("orchestrator: parse manifest: %w", err)
	}
	bundle, err := manifest.Build(parsed)
	if err != nil {
		return manifest.Bundle{}, fmt.Errorf("orchestrator: build manifest: %w", err)
	}
	return bundle, nil
}

// Definitions loads the manifest and converts its rules. OpenAPI requests
// default the reference prefix to the components section.
func (o *Orchestrator) Definitions(ctx context.Context, req Request) (generator.Result, manifest.Bundle, error) {
	bundle, err := o.Load(ctx, req)
	if err != nil {
		return generator.Result{}, manifest.Bundle{}, err
	}

	options := []generator.Option{generator.WithLogger(o.logger)}
	if o.rendererName(req.Renderer) == render.FormatOpenAPI {
		options = append(options, generator.WithRefPointerPrefix(openapi.RefPointerPrefix))
	}
	options = append(options, bundle.GeneratorOptions()...)
	options = append(options, o.generatorOptions...)
	options = append(options, req.Options...)

	result := generator.New(options...).Generate(bundle.Rules)
	o.logger.Debug("definitions generated",
		"definitions", len(result.Definitions),
		"rules", len(bundle.Rules),
		"diagnostics", len(result.Diagnostics),
	)

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, result.Definitions); err != nil {
			return generator.Result{}, manifest.Bundle{}, fmt.Errorf("orchestrator: transform definitions: %w", err)
		}
	}
	if req.Sanitize || bundle.Settings.SanitizeDescriptions {
		result.Definitions = schema.Sanitize(result.Definitions)
	}
	return result, bundle, nil
}

// Output is a rendered conversion.
type Output struct {
	Payload     []byte
	ContentType string
	Format      string
	Diagnostics []generator.Diagnostic
}

// Generate runs the full pipeline and returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	out, err := o.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return out.Payload, nil
}

// Render runs the full pipeline and keeps the diagnostics alongside the
// rendered bytes.
func (o *Orchestrator) Render(ctx context.Context, req Request) (Output, error) {
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Output{}, err
	}

	result, bundle, err := o.Definitions(ctx, req)
	if err != nil {
		return Output{}, err
	}

	options := req.RenderOptions
	if options.Title == "" {
		options.Title = bundle.Settings.Title
	}
	if options.Version == "" {
		options.Version = bundle.Settings.Version
	}

	payload, err := renderer.Render(ctx, result.Definitions, options)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return Output{
		Payload:     payload,
		ContentType: renderer.ContentType(),
		Format:      renderer.Name(),
		Diagnostics: result.Diagnostics,
	}, nil
}

// Renderer returns the renderer registered for name, or the default renderer
// when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

// Renderers lists the registered output formats.
func (o *Orchestrator) Renderers() []string {
	return o.registry.List()
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (manifest.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return manifest.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return manifest.Document{}, fmt.Errorf("orchestrator: load manifest: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererName(name string) string {
	if name == "" {
		return o.defaultRenderer
	}
	return name
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	target := o.rendererName(name)
	renderer, err := o.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", target, err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(manifest.NewLoaderOptions(o.loaderOptions...))
	}
	if o.parser == nil {
		o.parser = internalParser.New()
	}
	if o.registry == nil {
		o.registry = render.NewDefaultRegistry()
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
}
