// Package server exposes conversions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-ruleschema/internal/logging"
	"github.com/goliatone/go-ruleschema/pkg/cache"
	"github.com/goliatone/go-ruleschema/pkg/generator"
	"github.com/goliatone/go-ruleschema/pkg/manifest"
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/orchestrator"
	"github.com/goliatone/go-ruleschema/pkg/render"
)

// DefaultMaxBodyBytes caps manifest uploads.
const DefaultMaxBodyBytes int64 = 4 << 20

// Header names set on conversion responses.
const (
	HeaderCache       = "X-Ruleschema-Cache"
	HeaderDiagnostics = "X-Ruleschema-Diagnostics"
)

// Option customises the server.
type Option func(*Server)

// WithOrchestrator sets the conversion pipeline.
func WithOrchestrator(o *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		s.orchestrator = o
	}
}

// WithCache stores rendered payloads between requests.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithMetricsRegistry registers the server collectors on reg and serves reg
// on /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// Server converts posted manifests.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	cache        cache.Cache
	registry     *prometheus.Registry
	metrics      *Metrics
	logger       *slog.Logger
	maxBody      int64
}

// New builds a server. Without options it converts with the default
// orchestrator, caches nothing and exports metrics on a private registry.
func New(options ...Option) *Server {
	s := &Server{maxBody: DefaultMaxBodyBytes}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.orchestrator == nil {
		s.orchestrator = orchestrator.New(orchestrator.WithLogger(s.logger))
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/kinds", s.kinds)
	r.Get("/formats", s.formats)
	r.Post("/convert", s.convert)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) kinds(w http.ResponseWriter, r *http.Request) {
	kinds := metadata.Kinds()
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Renderers())
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	format := strings.TrimSpace(query.Get("format"))
	if format == "" {
		format = render.FormatJSON
	}
	logger := s.logger.With("request_id", middleware.GetReqID(ctx), "format", format)

	renderer, err := s.orchestrator.Renderer(format)
	if err != nil {
		s.metrics.conversions.WithLabelValues("unknown", "rejected").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.metrics.conversions.WithLabelValues(format, "rejected").Inc()
		writeError(w, status, fmt.Errorf("read body: %w", err))
		return
	}

	req, err := buildRequest(format, r.Header.Get("Content-Type"), query, body)
	if err != nil {
		s.metrics.conversions.WithLabelValues(format, "rejected").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	key := cache.Key(format, requestName(r.Header.Get("Content-Type")), query.Encode(), string(body))
	if entry, ok := s.lookup(ctx, logger, key); ok {
		s.metrics.conversions.WithLabelValues(format, "ok").Inc()
		w.Header().Set(HeaderCache, "hit")
		w.Header().Set(HeaderDiagnostics, strconv.Itoa(entry.Diagnostics))
		writePayload(w, renderer.ContentType(), entry.Payload)
		return
	}

	started := time.Now()
	out, err := s.orchestrator.Render(ctx, req)
	s.metrics.duration.WithLabelValues(format).Observe(time.Since(started).Seconds())
	if err != nil {
		status := http.StatusUnprocessableEntity
		var manifestErr manifest.Error
		if errors.As(err, &manifestErr) {
			status = http.StatusBadRequest
		}
		s.metrics.conversions.WithLabelValues(format, "failed").Inc()
		logger.Info("conversion failed", "status", status, "error", err)
		writeError(w, status, err)
		return
	}

	for _, diag := range out.Diagnostics {
		s.metrics.diagnostics.WithLabelValues(string(diag.Kind)).Inc()
	}
	s.metrics.conversions.WithLabelValues(format, "ok").Inc()

	s.store(ctx, logger, key, cacheEntry{Diagnostics: len(out.Diagnostics), Payload: out.Payload})

	logger.Debug("conversion rendered", "bytes", len(out.Payload), "diagnostics", len(out.Diagnostics))
	w.Header().Set(HeaderCache, "miss")
	w.Header().Set(HeaderDiagnostics, strconv.Itoa(len(out.Diagnostics)))
	writePayload(w, out.ContentType, out.Payload)
}

// cacheEntry is the cached form of a successful conversion.
type cacheEntry struct {
	Diagnostics int    `json:"diagnostics"`
	Payload     []byte `json:"payload"`
}

// lookup reports a hit only for entries that decode. Cache errors fall through
// to a fresh conversion.
func (s *Server) lookup(ctx context.Context, logger *slog.Logger, key string) (cacheEntry, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		s.metrics.cache.WithLabelValues("error").Inc()
		return cacheEntry{}, false
	}
	if !ok {
		s.metrics.cache.WithLabelValues("miss").Inc()
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Warn("cache entry unreadable", "error", err)
		s.metrics.cache.WithLabelValues("error").Inc()
		return cacheEntry{}, false
	}
	s.metrics.cache.WithLabelValues("hit").Inc()
	return entry, true
}

func (s *Server) store(ctx context.Context, logger *slog.Logger, key string, entry cacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("cache entry encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		logger.Warn("cache store failed", "error", err)
	}
}

func buildRequest(format, contentType string, query map[string][]string, body []byte) (orchestrator.Request, error) {
	doc, err := manifest.NewDocument(manifest.SourceFromFS(requestName(contentType)), body)
	if err != nil {
		return orchestrator.Request{}, err
	}

	get := func(name string) string {
		if values := query[name]; len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
		return ""
	}

	req := orchestrator.Request{
		Document: &doc,
		Renderer: format,
		RenderOptions: render.RenderOptions{
			Title:   get("title"),
			Version: get("version"),
		},
	}
	if prefix := get("ref-prefix"); prefix != "" {
		req.Options = append(req.Options, generator.WithRefPointerPrefix(prefix))
	}
	if raw := get("skip-missing"); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			return orchestrator.Request{}, fmt.Errorf("skip-missing: %w", err)
		}
		req.Options = append(req.Options, generator.WithSkipMissingProperties(skip))
	}
	if raw := get("sanitize"); raw != "" {
		sanitize, err := strconv.ParseBool(raw)
		if err != nil {
			return orchestrator.Request{}, fmt.Errorf("sanitize: %w", err)
		}
		req.Sanitize = sanitize
	}
	return req, nil
}

// requestName picks a synthetic file name so the document format follows the
// content type. Unknown types fall back to sniffing.
func requestName(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "json"):
		return "request.json"
	case strings.Contains(contentType, "yaml"), strings.Contains(contentType, "yml"):
		return "request.yaml"
	default:
		return "request"
	}
}

func writePayload(w http.ResponseWriter, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(payload, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
