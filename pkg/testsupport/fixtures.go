package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// LoadDocument reads a manifest fixture into a Document using a file source.
func LoadDocument(t *testing.T, path string) manifest.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (manifest.Document, error) {
	if path == "" {
		return manifest.Document{}, errors.New("testsupport: document path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return manifest.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := manifest.NewDocument(manifest.SourceFromFile(path), data)
	if err != nil {
		return manifest.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, append(payload, '\n'))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CompareJSON decodes both payloads and diffs the generic values, so
// formatting and integer versus float encodings do not matter.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()

	var wantValue, gotValue any
	if err := json.Unmarshal(want, &wantValue); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &gotValue); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	return cmp.Diff(wantValue, gotValue)
}

// CompareDefinitions diffs generated definitions against a JSON golden.
func CompareDefinitions(t *testing.T, want []byte, got map[string]schema.Fragment) string {
	t.Helper()

	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal definitions: %v", err)
	}
	return CompareJSON(t, want, payload)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
