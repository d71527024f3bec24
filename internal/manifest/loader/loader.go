package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-ruleschema/pkg/manifest"
)

// Loader implements manifest.Loader over files, fs.FS entries and HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ manifest.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options. URL sources stay disabled
// unless a client or the HTTP fallback is configured.
func New(options manifest.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{fs: options.FileSystem, http: client, timeout: timeout}
}

// Load reads src and wraps the payload in a manifest.Document.
func (l *Loader) Load(ctx context.Context, src manifest.Source) (manifest.Document, error) {
	if src == nil {
		return manifest.Document{}, errors.New("manifest loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case manifest.SourceKindFile:
		data, err = readFile(ctx, src.Location())
	case manifest.SourceKindFS:
		data, err = readFS(ctx, l.fs, src.Location())
	case manifest.SourceKindURL:
		if l.http == nil {
			return manifest.Document{}, errors.New("manifest loader: http support disabled")
		}
		data, err = fetch(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("manifest loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return manifest.Document{}, err
	}
	return manifest.NewDocument(src, data)
}
