package generator

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-ruleschema/pkg/catalog"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
)

// Options configures a conversion. Obtain a baseline from DefaultOptions and
// adjust it with Option values; the defaults themselves are never mutated.
type Options struct {
	// RefPointerPrefix is prepended to type names in emitted $ref pointers.
	RefPointerPrefix string

	// SkipMissingProperties selects the opt-in required policy: a property is
	// only required when an explicit presence rule says so.
	SkipMissingProperties bool

	// AdditionalConverters shadow built-in converters of the same kind and may
	// introduce new kinds.
	AdditionalConverters map[metadata.Kind]catalog.Converter

	// Types resolves declared property types for custom and nested rules.
	Types metadata.TypeReflector

	// ElementTypes supplies element-type hints for nested rules.
	ElementTypes metadata.ElementTypeHints

	// Overrides stores raw schema overrides per type and property.
	Overrides metadata.OverrideStore

	// Logger receives debug output about skipped rules. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		RefPointerPrefix: metadata.DefaultRefPointerPrefix,
	}
}

// Option mutates Options prior to conversion.
type Option func(*Options)

// WithRefPointerPrefix sets the $ref prefix, e.g. "#/components/schemas/".
func WithRefPointerPrefix(prefix string) Option {
	return func(o *Options) {
		if strings.TrimSpace(prefix) == "" {
			return
		}
		o.RefPointerPrefix = prefix
	}
}

// WithSkipMissingProperties toggles the opt-in required policy.
func WithSkipMissingProperties(enabled bool) Option {
	return func(o *Options) {
		o.SkipMissingProperties = enabled
	}
}

// WithConverter registers an additional converter for kind.
func WithConverter(kind metadata.Kind, converter catalog.Converter) Option {
	return func(o *Options) {
		if converter == nil || strings.TrimSpace(string(kind)) == "" {
			return
		}
		next := make(map[metadata.Kind]catalog.Converter, len(o.AdditionalConverters)+1)
		for k, v := range o.AdditionalConverters {
			next[k] = v
		}
		next[kind] = converter
		o.AdditionalConverters = next
	}
}

// WithConverters registers several additional converters at once.
func WithConverters(converters map[metadata.Kind]catalog.Converter) Option {
	return func(o *Options) {
		for kind, converter := range converters {
			WithConverter(kind, converter)(o)
		}
	}
}

// WithTypes injects the declared-type reflector.
func WithTypes(types metadata.TypeReflector) Option {
	return func(o *Options) {
		o.Types = types
	}
}

// WithElementTypes injects the element-type hint source.
func WithElementTypes(hints metadata.ElementTypeHints) Option {
	return func(o *Options) {
		o.ElementTypes = hints
	}
}

// WithOverrides injects the override store.
func WithOverrides(store metadata.OverrideStore) Option {
	return func(o *Options) {
		o.Overrides = store
	}
}

// WithRegistry wires a registry as type reflector, element-type hint source
// and override store.
func WithRegistry(registry *metadata.Registry) Option {
	return func(o *Options) {
		if registry == nil {
			return
		}
		o.Types = registry
		o.ElementTypes = registry
		o.Overrides = registry
	}
}

// WithLogger injects a logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Apply returns a copy of o with options applied.
func (o Options) Apply(options ...Option) Options {
	out := o
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&out)
	}
	return out
}

// Metadata returns the read-only view handed to converters and overrides.
func (o Options) Metadata() metadata.Options {
	return metadata.Options{
		RefPointerPrefix:      o.RefPointerPrefix,
		SkipMissingProperties: o.SkipMissingProperties,
		Types:                 o.Types,
		ElementTypes:          o.ElementTypes,
		Overrides:             o.Overrides,
	}
}
