package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-ruleschema/pkg/manifest"
)

const sample = "rules:\n  - { type: User, property: email, kind: is-email }\n"

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := New(manifest.NewLoaderOptions()).Load(context.Background(), manifest.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != sample {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Format() != manifest.FormatYAML {
		t.Fatalf("expected yaml format, got %q", doc.Format())
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"specs/rules.json": {Data: []byte(`{"rules": []}`)}}
	loader := New(manifest.NewLoaderOptions(manifest.WithFileSystem(files)))

	doc, err := loader.Load(context.Background(), manifest.SourceFromFS("specs/rules.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != manifest.FormatJSON {
		t.Fatalf("expected json format, got %q", doc.Format())
	}

	if _, err := New(manifest.NewLoaderOptions()).Load(context.Background(), manifest.SourceFromFS("specs/rules.json")); err == nil {
		t.Fatalf("expected error without file system")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer server.Close()

	src, err := manifest.SourceFromURL(server.URL + "/rules.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := New(manifest.NewLoaderOptions()).Load(context.Background(), src); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}

	loader := New(manifest.NewLoaderOptions(manifest.WithHTTPFallback(time.Second)))
	doc, err := loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != sample {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	missing, _ := manifest.SourceFromURL(server.URL + "/missing")
	if _, err := loader.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(manifest.NewLoaderOptions()).Load(ctx, manifest.SourceFromFile("rules.yaml")); err == nil {
		t.Fatalf("expected context error")
	}
}
