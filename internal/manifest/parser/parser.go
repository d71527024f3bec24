package parser

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ruleschema/pkg/manifest"
)

// Parser implements manifest.Parser for YAML and JSON documents. Payloads are
// decoded into generic maps first and then bound to manifest.Manifest with
// mapstructure, rejecting unknown keys.
type Parser struct{}

var _ manifest.Parser = (*Parser)(nil)

// New constructs a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse decodes doc according to its format.
func (p *Parser) Parse(ctx context.Context, doc manifest.Document) (manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return manifest.Manifest{}, err
	}

	raw := doc.Raw()
	if len(raw) == 0 {
		return manifest.Manifest{}, manifest.Error{Message: "document payload is empty"}
	}

	var payload map[string]any
	switch doc.Format() {
	case manifest.FormatJSON:
		if err := json.Unmarshal(raw, &payload); err != nil {
			return manifest.Manifest{}, manifest.Error{Path: doc.Location(), Message: fmt.Sprintf("parse json: %v", err)}
		}
	default:
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return manifest.Manifest{}, manifest.Error{Path: doc.Location(), Message: fmt.Sprintf("parse yaml: %v", err)}
		}
	}
	if payload == nil {
		return manifest.Manifest{}, manifest.Error{Path: doc.Location(), Message: "document is not a mapping"}
	}

	return Decode(payload)
}

// Decode binds a generic payload to a Manifest.
func Decode(payload map[string]any) (manifest.Manifest, error) {
	var out manifest.Manifest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		TagName:     "mapstructure",
		Result:      &out,
	})
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("manifest parser: build decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return manifest.Manifest{}, manifest.Error{Message: fmt.Sprintf("decode: %v", err)}
	}
	return out, nil
}
