// Package openapi embeds generated definitions into an OpenAPI 3.0 document
// as components/schemas and validates the result with kin-openapi.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// RefPointerPrefix is the reference prefix definitions must be generated with
// to resolve inside a document produced by Document.
const RefPointerPrefix = "#/components/schemas/"

// Version is the OpenAPI version written by Document.
const Version = "3.0.3"

const (
	defaultTitle   = "ruleschema"
	defaultVersion = "0.0.0"
)

// Info carries the document metadata.
type Info struct {
	Title   string
	Version string
}

// Components converts definitions into kin-openapi schemas keyed by name.
// References are kept as-is and are not resolved.
func Components(defs map[string]schema.Fragment) (openapi3.Schemas, error) {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(openapi3.Schemas, len(defs))
	for _, name := range names {
		payload, err := json.Marshal(normalise(defs[name]))
		if err != nil {
			return nil, fmt.Errorf("openapi: marshal %s: %w", name, err)
		}
		value := &openapi3.Schema{}
		if err := value.UnmarshalJSON(payload); err != nil {
			return nil, fmt.Errorf("openapi: decode %s: %w", name, err)
		}
		out[name] = openapi3.NewSchemaRef("", value)
	}
	return out, nil
}

// Document builds an OpenAPI document holding defs under components/schemas.
// The document is round-tripped through the kin-openapi loader so internal
// references are resolved.
func Document(ctx context.Context, defs map[string]schema.Fragment, info Info) (*openapi3.T, error) {
	schemas, err := Components(defs)
	if err != nil {
		return nil, err
	}

	if info.Title == "" {
		info.Title = defaultTitle
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}

	doc := &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: info.Title, Version: info.Version},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}

	payload, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}

	loader := &openapi3.Loader{Context: ctx}
	resolved, err := loader.LoadFromData(payload)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return resolved, nil
}

// Validate checks the document structure. Patterns are not compiled since
// generated patterns target ECMAScript engines. Overrides may annotate a
// reference with a description or title.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return errors.New("openapi: document is nil")
	}
	if err := doc.Validate(ctx,
		openapi3.DisableSchemaPatternValidation(),
		openapi3.DisableExamplesValidation(),
		openapi3.AllowExtraSiblingFields(schema.KeyDescription, schema.KeyTitle),
	); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// normalise returns a copy of fragment where every array schema carries an
// items keyword. OpenAPI 3.0 rejects array schemas without one.
func normalise(fragment schema.Fragment) schema.Fragment {
	out := fragment.Clone()
	normaliseInPlace(out)
	return out
}

func normaliseInPlace(fragment schema.Fragment) {
	if fragment == nil {
		return
	}
	if fragment.Type() == schema.TypeArray {
		if _, ok := fragment[schema.KeyItems]; !ok {
			fragment[schema.KeyItems] = schema.Fragment{}
		}
	}
	for key, value := range fragment {
		switch key {
		case schema.KeyEnum, schema.KeyRequired:
			continue
		case schema.KeyProperties:
			if props, ok := schema.AsFragment(value); ok {
				for _, prop := range props {
					if nested, ok := schema.AsFragment(prop); ok {
						normaliseInPlace(nested)
					}
				}
			}
			continue
		}
		switch typed := value.(type) {
		case schema.Fragment:
			normaliseInPlace(typed)
		case []any:
			for _, item := range typed {
				if nested, ok := schema.AsFragment(item); ok {
					normaliseInPlace(nested)
				}
			}
		}
	}
}
