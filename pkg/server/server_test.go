package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ruleschema/pkg/cache"
	"github.com/goliatone/go-ruleschema/pkg/testsupport"
)

const (
	accountsManifest = "../orchestrator/testdata/accounts.yaml"
	accountsGolden   = "../orchestrator/testdata/accounts.golden.json"
)

const unknownKindManifest = `{
  "types": [{"name": "Widget"}],
  "rules": [
    {"type": "Widget", "property": "name", "kind": "is-string"},
    {"type": "Widget", "property": "name", "kind": "is-shiny"}
  ]
}`

func post(t *testing.T, h http.Handler, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func readManifest(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(accountsManifest)
	require.NoError(t, err)
	return string(data)
}

func TestConvert_MatchesGolden(t *testing.T) {
	srv := New()
	rec := post(t, srv.Handler(), "/convert", "application/yaml", readManifest(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "miss", rec.Header().Get(HeaderCache))
	assert.Equal(t, "0", rec.Header().Get(HeaderDiagnostics))

	want := testsupport.MustReadGolden(t, accountsGolden)
	if diff := testsupport.CompareJSON(t, want, rec.Body.Bytes()); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.conversions.WithLabelValues("json", "ok")))
}

func TestConvert_QueryOptions(t *testing.T) {
	srv := New()
	rec := post(t, srv.Handler(), "/convert?format=yaml&ref-prefix=%23/$defs/&skip-missing=true", "", readManifest(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "#/$defs/Address")
}

func TestConvert_OpenAPI(t *testing.T) {
	srv := New()
	rec := post(t, srv.Handler(), "/convert?format=openapi&title=Remote", "application/x-yaml", readManifest(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Remote", doc["info"].(map[string]any)["title"])
	assert.Contains(t, rec.Body.String(), "#/components/schemas/Address")
}

func TestConvert_CountsDiagnostics(t *testing.T) {
	srv := New()
	rec := post(t, srv.Handler(), "/convert", "application/json", unknownKindManifest)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get(HeaderDiagnostics))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.diagnostics.WithLabelValues("unknown-kind")))
}

func TestConvert_Errors(t *testing.T) {
	cases := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown format", "/convert?format=xml", "types: []", http.StatusBadRequest},
		{"empty body", "/convert", "  ", http.StatusBadRequest},
		{"bad flag", "/convert?skip-missing=maybe", "types: []", http.StatusBadRequest},
		{"malformed manifest", "/convert", "types: [", http.StatusBadRequest},
		{"unknown base", "/convert", "types:\n  - {name: A, base: B}\n", http.StatusBadRequest},
		{"unresolvable openapi refs", "/convert?format=openapi&ref-prefix=%23/definitions/", readManifest(t), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, New().Handler(), tc.target, "", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestConvert_BodyLimit(t *testing.T) {
	srv := New(WithMaxBodyBytes(16))
	rec := post(t, srv.Handler(), "/convert", "", readManifest(t))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvert_UsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()

	reg := prometheus.NewRegistry()
	srv := New(WithCache(store), WithMetricsRegistry(reg))
	h := srv.Handler()
	manifest := readManifest(t)

	first := post(t, h, "/convert?format=yaml", "", manifest)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "miss", first.Header().Get(HeaderCache))
	assert.Len(t, mr.Keys(), 1)

	second := post(t, h, "/convert?format=yaml", "", manifest)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(HeaderCache))
	assert.Equal(t, "application/yaml", second.Header().Get("Content-Type"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	other := post(t, h, "/convert?format=json", "", manifest)
	assert.Equal(t, "miss", other.Header().Get(HeaderCache))

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(srv.metrics.cache.WithLabelValues("miss")))
}

func TestConvert_CacheHitKeepsDiagnostics(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()

	h := New(WithCache(store)).Handler()

	first := post(t, h, "/convert", "application/json", unknownKindManifest)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "miss", first.Header().Get(HeaderCache))
	assert.Equal(t, "1", first.Header().Get(HeaderDiagnostics))

	second := post(t, h, "/convert", "application/json", unknownKindManifest)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(HeaderCache))
	assert.Equal(t, "1", second.Header().Get(HeaderDiagnostics))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestConvert_CacheKeyIncludesContentType(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()

	h := New(WithCache(store)).Handler()

	asJSON := post(t, h, "/convert", "application/json", unknownKindManifest)
	require.Equal(t, http.StatusOK, asJSON.Code, asJSON.Body.String())
	assert.Equal(t, "miss", asJSON.Header().Get(HeaderCache))

	asYAML := post(t, h, "/convert", "application/yaml", unknownKindManifest)
	require.Equal(t, http.StatusOK, asYAML.Code, asYAML.Body.String())
	assert.Equal(t, "miss", asYAML.Header().Get(HeaderCache))
	assert.Len(t, mr.Keys(), 2)
}

func TestConvert_UnreadableCacheEntryIsReconverted(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()

	srv := New(WithCache(store))
	h := srv.Handler()

	first := post(t, h, "/convert", "application/json", unknownKindManifest)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.NoError(t, mr.Set(keys[0], "not json"))

	second := post(t, h, "/convert", "application/json", unknownKindManifest)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Equal(t, "miss", second.Header().Get(HeaderCache))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.cache.WithLabelValues("error")))
}

func TestConvert_CacheFailureFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	store := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer store.Close()
	mr.Close()

	srv := New(WithCache(store))
	rec := post(t, srv.Handler(), "/convert", "", readManifest(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.cache.WithLabelValues("error")))
}

func TestInfoRoutes(t *testing.T) {
	h := New().Handler()

	health := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	var kinds []string
	require.NoError(t, json.Unmarshal(get(t, h, "/kinds").Body.Bytes(), &kinds))
	assert.Contains(t, kinds, "is-email")
	assert.Contains(t, kinds, "nested-validation")

	var formats []string
	require.NoError(t, json.Unmarshal(get(t, h, "/formats").Body.Bytes(), &formats))
	assert.Equal(t, []string{"json", "openapi", "yaml"}, formats)

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, "/convert").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := New()
	h := srv.Handler()
	post(t, h, "/convert", "", readManifest(t))

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ruleschema_conversions_total{format="json",outcome="ok"} 1`)
	assert.Contains(t, body, "ruleschema_conversion_duration_seconds_count")
}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "request.json", requestName("application/json; charset=utf-8"))
	assert.Equal(t, "request.yaml", requestName("application/yaml"))
	assert.Equal(t, "request.yaml", requestName("text/x-yml"))
	assert.Equal(t, "request", requestName(""))
}
