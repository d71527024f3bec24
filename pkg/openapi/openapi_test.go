package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

func sampleDefinitions(t *testing.T) map[string]schema.Fragment {
	t.Helper()

	registry := metadata.NewRegistry()
	user, err := registry.Define("User", nil)
	require.NoError(t, err)
	address, err := registry.Define("Address", nil)
	require.NoError(t, err)
	registry.DeclareProperty(user, "address", address)

	rules := []metadata.Rule{
		metadata.NewRule(user, "email", metadata.KindIsEmail),
		metadata.NewRule(user, "zip", metadata.KindMatches, `^\d{5}(?!-)$`),
		metadata.NewRule(user, "tags", metadata.KindIsArray),
		metadata.NewRule(user, "score", metadata.KindIsPositive),
		metadata.NewRule(user, "address", metadata.KindNestedValidation),
		metadata.NewRule(address, "street", metadata.KindIsNotEmpty),
	}

	return generator.Convert(rules,
		generator.WithRegistry(registry),
		generator.WithRefPointerPrefix(RefPointerPrefix),
	)
}

func TestComponents_ConvertsDefinitions(t *testing.T) {
	schemas, err := Components(sampleDefinitions(t))
	require.NoError(t, err)
	require.Contains(t, schemas, "User")
	require.Contains(t, schemas, "Address")

	user := schemas["User"].Value
	require.NotNil(t, user)
	assert.True(t, user.Type.Is("object"))
	assert.ElementsMatch(t, []string{"email", "zip", "tags", "score", "address"}, user.Required)

	email := user.Properties["email"].Value
	require.NotNil(t, email)
	assert.Equal(t, "email", email.Format)

	tags := user.Properties["tags"].Value
	require.NotNil(t, tags)
	require.NotNil(t, tags.Items, "array schemas must gain an items keyword")

	score := user.Properties["score"].Value
	require.NotNil(t, score)
	assert.True(t, score.ExclusiveMin)

	assert.Equal(t, RefPointerPrefix+"Address", user.Properties["address"].Ref)
}

func TestDocument_ResolvesAndValidates(t *testing.T) {
	ctx := context.Background()

	doc, err := Document(ctx, sampleDefinitions(t), Info{Title: "Accounts", Version: "1.2.0"})
	require.NoError(t, err)
	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "Accounts", doc.Info.Title)

	address := doc.Components.Schemas["User"].Value.Properties["address"]
	require.NotNil(t, address.Value, "internal references should be resolved")
	assert.Contains(t, address.Value.Properties, "street")

	require.NoError(t, Validate(ctx, doc))
}

func TestDocument_DefaultsInfo(t *testing.T) {
	doc, err := Document(context.Background(), map[string]schema.Fragment{
		"Empty": {"type": "object", "properties": schema.Fragment{}},
	}, Info{})
	require.NoError(t, err)
	assert.Equal(t, defaultTitle, doc.Info.Title)
	assert.Equal(t, defaultVersion, doc.Info.Version)
}

func TestDocument_RejectsForeignReferences(t *testing.T) {
	defs := map[string]schema.Fragment{
		"User": {
			"type":       "object",
			"properties": schema.Fragment{"address": schema.Fragment{"$ref": "#/definitions/Address"}},
		},
	}
	_, err := Document(context.Background(), defs, Info{})
	require.Error(t, err)
}

func TestValidate_NilDocument(t *testing.T) {
	err := Validate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "openapi:"))
}

func TestNormalise_DoesNotMutateInput(t *testing.T) {
	input := schema.Fragment{
		"type": "object",
		"properties": schema.Fragment{
			"list": schema.Fragment{"type": "array"},
		},
		"anyOf": []any{schema.Fragment{"type": "array"}},
	}

	got := normalise(input)

	props, _ := got.Object("properties")
	list, _ := props.Object("list")
	assert.Equal(t, schema.Fragment{}, list["items"])
	first, _ := schema.AsFragment(got["anyOf"].([]any)[0])
	assert.Equal(t, schema.Fragment{}, first["items"])

	origProps, _ := input.Object("properties")
	origList, _ := origProps.Object("list")
	_, hasItems := origList["items"]
	assert.False(t, hasItems)
}
