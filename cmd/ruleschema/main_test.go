package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ruleschema"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/wizard"
)

const manifestYAML = `
options:
  title: Shop
types:
  - name: Order
    properties: { customer: Customer }
  - name: Customer
overrides:
  - type: Order
    property: note
    schema: { description: "<em>Free</em> text" }
rules:
  - { type: Order, property: customer, kind: nested-validation }
  - { type: Order, property: total, kind: is-positive }
  - { type: Order, property: note, kind: is-string }
  - { type: Order, property: note, kind: conditional-validation }
  - { type: Customer, property: email, kind: is-email }
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifestYAML), 0o644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestConvert_JSON(t *testing.T) {
	stdout, _, err := execute(t, "convert", writeManifest(t))
	require.NoError(t, err)

	var defs map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &defs))
	require.Contains(t, defs, "Order")
	require.Contains(t, defs, "Customer")

	props := defs["Order"]["properties"].(map[string]any)
	assert.Equal(t, "#/definitions/Customer", props["customer"].(map[string]any)["$ref"])
	assert.Equal(t, "<em>Free</em> text", props["note"].(map[string]any)["description"])
	assert.Equal(t, []any{"customer", "total"}, defs["Order"]["required"])
}

func TestConvert_FlagsOverrideManifest(t *testing.T) {
	stdout, _, err := execute(t, "convert", writeManifest(t),
		"--ref-prefix", "#/$defs/",
		"--skip-missing",
		"--sanitize",
		"--format", "yaml",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "#/$defs/Customer")
	assert.Contains(t, stdout, "description: Free text")
	assert.NotContains(t, stdout, "required:")
}

func TestConvert_OpenAPIToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "openapi.json")
	_, stderr, err := execute(t, "convert", writeManifest(t),
		"-f", "openapi",
		"-o", target,
		"--doc-version", "3.1.4",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "definitions written")

	raw, err := os.ReadFile(target)
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Shop", doc.Info.Title)
	assert.Equal(t, "3.1.4", doc.Info.Version)
	assert.Contains(t, string(doc.Components.Schemas["Order"]), "#/components/schemas/Customer")
}

func TestConvert_Errors(t *testing.T) {
	_, _, err := execute(t, "convert")
	require.Error(t, err)

	_, _, err = execute(t, "convert", writeManifest(t), "--format", "xml")
	require.Error(t, err)

	_, _, err = execute(t, "convert", writeManifest(t), "--log-level", "loud")
	require.Error(t, err)

	_, _, err = execute(t, "convert", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConvert_DebugLogsDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.json")
	payload := `{"rules": [{"type": "Odd", "property": "x", "kind": "is-weird"}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	stdout, stderr, err := execute(t, "convert", path, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Odd"`)
	assert.Contains(t, stderr, "rule skipped")
	assert.Contains(t, stderr, "unknown-kind")
}

func TestKinds(t *testing.T) {
	stdout, _, err := execute(t, "kinds")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, len(metadata.Kinds()))
	assert.Contains(t, lines, string(metadata.KindIsEmail))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ruleschema version "+ruleschema.Version+"\n", stdout)
}

type scriptedDriver struct {
	inputs  []string
	kinds   []int
	confirm []bool
}

func (s *scriptedDriver) Input(context.Context, wizard.InputConfig) (string, error) {
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *scriptedDriver) Confirm(context.Context, wizard.ConfirmConfig) (bool, error) {
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *scriptedDriver) Select(context.Context, wizard.SelectConfig) (int, error) {
	val := s.kinds[0]
	s.kinds = s.kinds[1:]
	return val, nil
}

func TestInit_WritesLoadableManifest(t *testing.T) {
	emailIdx := -1
	for idx, kind := range metadata.Kinds() {
		if kind == metadata.KindIsEmail {
			emailIdx = idx
		}
	}
	promptDriver = &scriptedDriver{
		inputs:  []string{"Contact", "email", "", ""},
		kinds:   []int{emailIdx},
		confirm: []bool{false, false, false},
	}
	t.Cleanup(func() { promptDriver = nil })

	target := filepath.Join(t.TempDir(), "contact.yaml")
	_, _, err := execute(t, "init", "-o", target)
	require.NoError(t, err)

	stdout, _, err := execute(t, "convert", target)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"format": "email"`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, stderr, err := executeContext(t, ctx, "serve", "--addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, stderr, "server listening")
	assert.Contains(t, stderr, "server stopped")
}

func TestServe_RedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, _, err = execute(t, "serve", "--addr", "127.0.0.1:0", "--redis-addr", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: ping")
}

func TestServe_InvalidAddress(t *testing.T) {
	_, _, err := execute(t, "serve", "--addr", "not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve: listen")
}
