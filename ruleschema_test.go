package ruleschema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ruleschema"
	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

const sampleManifest = `
types:
  - name: Post
rules:
  - { type: Post, property: title, kind: length, constraints: [1, 80] }
  - { type: Post, property: draft, kind: is-boolean }
  - { type: Post, property: draft, kind: conditional-validation }
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))
	return path
}

func TestConvert(t *testing.T) {
	registry := metadata.NewRegistry()
	post := registry.MustDefine("Post", nil)

	defs := ruleschema.Convert([]metadata.Rule{
		metadata.NewRule(post, "title", metadata.KindIsString),
	}, generator.WithRegistry(registry))

	assert.Equal(t, schema.Fragment{
		"properties": schema.Fragment{"title": schema.Fragment{"type": "string"}},
		"required":   []any{"title"},
		"type":       "object",
	}, defs["Post"])
}

func TestLoadManifest(t *testing.T) {
	bundle, err := ruleschema.LoadManifest(context.Background(), manifest.SourceFromFile(writeManifest(t)))
	require.NoError(t, err)
	assert.Len(t, bundle.Rules, 3)

	_, ok := bundle.Registry.Type("Post")
	assert.True(t, ok)
}

func TestGenerate(t *testing.T) {
	out, err := ruleschema.Generate(context.Background(), manifest.SourceFromFile(writeManifest(t)), "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "maxLength: 80")
	assert.Contains(t, string(out), "- title")
}

func TestNewLoaderAndParser(t *testing.T) {
	ctx := context.Background()
	doc, err := ruleschema.NewLoader().Load(ctx, manifest.SourceFromFile(writeManifest(t)))
	require.NoError(t, err)

	parsed, err := ruleschema.NewParser().Parse(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "Post", parsed.Types[0].Name)
}
