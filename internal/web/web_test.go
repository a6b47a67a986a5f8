package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/state"
)

func testStore() *state.Store {
	store := state.NewStore()
	store.Replace(map[string]pattern.Options{
		"tiny": {
			BaseGrid: pattern.Ptr(8.0),
			TileSize: pattern.Ptr(32.0),
			Seed:     pattern.Ptr(pattern.StringSeed("test-seed")),
		},
		"hero": {},
	}, "tiny")
	return store
}

func newTestRouter(t *testing.T, dev bool) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{Sections: testStore(), Dev: dev})
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBackground(t *testing.T) {
	h := newTestRouter(t, false)

	rec := get(t, h, "/api/v1/background.png?width=20&height=10&dpr=2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, cacheControl, rec.Header().Get("Cache-Control"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	again := get(t, h, "/api/v1/background.png?width=20&height=10&dpr=2")
	assert.Equal(t, rec.Body.Bytes(), again.Body.Bytes(), "deterministic output")
	assert.Equal(t, etag, again.Header().Get("ETag"))

	cached := get(t, h, "/api/v1/background.png?width=20&height=10&dpr=2", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.Bytes())

	reseeded := get(t, h, "/api/v1/background.png?width=20&height=10&dpr=2&seed=other")
	require.Equal(t, http.StatusOK, reseeded.Code)
	assert.NotEqual(t, etag, reseeded.Header().Get("ETag"))

	capped := get(t, h, "/api/v1/background.png?width=5&height=5&dpr=3")
	require.Equal(t, http.StatusOK, capped.Code)
	img, err = png.Decode(bytes.NewReader(capped.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestBackgroundBadRequests(t *testing.T) {
	h := newTestRouter(t, false)
	tests := []struct {
		query  string
		status int
		code   string
	}{
		{"width=0", http.StatusBadRequest, "invalid_width"},
		{"width=abc", http.StatusBadRequest, "invalid_width"},
		{"height=9000", http.StatusBadRequest, "invalid_height"},
		{"dpr=-1", http.StatusBadRequest, "invalid_dpr"},
		{"width=8000&dpr=2", http.StatusBadRequest, "image_too_large"},
		{"width=10&height=0", http.StatusBadRequest, "invalid_height"},
		{"accent_rate=2", http.StatusBadRequest, "invalid_option"},
		{"soft_rate=lots", http.StatusBadRequest, "invalid_option"},
		{"full_grid=maybe", http.StatusBadRequest, "invalid_option"},
		{"stroke_color=blue", http.StatusBadRequest, "invalid_option"},
		{"section=sidebar", http.StatusNotFound, "unknown_section"},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			params := url.Values{"width": {"10"}, "height": {"10"}}
			for k, v := range q {
				params[k] = v
			}
			rec := get(t, h, "/api/v1/background.png?"+params.Encode())
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Error)
		})
	}
}

func TestTile(t *testing.T) {
	h := newTestRouter(t, false)

	rec := get(t, h, "/api/v1/tiles/2/3.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	other := get(t, h, "/api/v1/tiles/3/2.png")
	require.Equal(t, http.StatusOK, other.Code)
	assert.NotEqual(t, rec.Body.Bytes(), other.Body.Bytes())
	assert.NotEqual(t, rec.Header().Get("ETag"), other.Header().Get("ETag"))

	for _, path := range []string{"/api/v1/tiles/-1/0.png", "/api/v1/tiles/0/x.png"} {
		bad := get(t, h, path)
		assert.Equal(t, http.StatusBadRequest, bad.Code, path)
		assert.Equal(t, "invalid_tile", decodeError(t, bad).Error)
	}

	big := get(t, h, "/api/v1/tiles/0/0.png?section=hero&base_grid=600")
	assert.Equal(t, http.StatusBadRequest, big.Code)
	assert.Equal(t, "tile_too_large", decodeError(t, big).Error)
}

func TestSections(t *testing.T) {
	h := newTestRouter(t, false)

	rec := get(t, h, "/api/v1/sections")
	require.Equal(t, http.StatusOK, rec.Code)
	var list sectionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, sectionsResponse{Sections: []string{"hero", "tiny"}, Default: "tiny"}, list)

	rec = get(t, h, "/api/v1/sections/tiny")
	require.Equal(t, http.StatusOK, rec.Code)
	var one sectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, "tiny", one.Name)
	assert.Equal(t, "dense", one.Strategy)
	assert.Equal(t, 32.0, one.TileSize)
	assert.Equal(t, 1.0, one.Gutter)
	assert.Equal(t, uint32(3638103021), one.BaseSeed)
	require.NotNil(t, one.Options.Seed)
	assert.Equal(t, "test-seed", one.Options.Seed.String())

	rec = get(t, h, "/api/v1/sections/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_section", decodeError(t, rec).Error)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, false)

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/tiles/0/0.png").Code)
	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `squarebg_renders_total{kind="tile"} 1`)
	assert.Contains(t, rec.Body.String(), "squarebg_render_seconds_bucket")
}

func TestPreviewPage(t *testing.T) {
	rec := get(t, newTestRouter(t, false), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/background.png")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("custom page"), 0o644))
	h := NewRouter(RouterConfig{Sections: testStore(), StaticDir: dir})
	rec = get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom page", rec.Body.String())

	h = NewRouter(RouterConfig{Sections: testStore(), StaticDir: filepath.Join(dir, "missing")})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/").Code)
}

func TestDevCORS(t *testing.T) {
	rec := get(t, newTestRouter(t, true), "/api/v1/sections", "Origin", "http://localhost:5173")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(t, newTestRouter(t, false), "/api/v1/sections", "Origin", "http://localhost:5173")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptionOverrides(t *testing.T) {
	q := map[string][]string{
		"accent_rate":  {"0.25"},
		"full_grid":    {"false"},
		"seed":         {"42"},
		"stroke_color": {"#fff"},
	}
	o, err := optionOverrides(q)
	require.NoError(t, err)
	assert.Equal(t, 0.25, *o.AccentRate)
	assert.False(t, *o.FullGrid)
	assert.False(t, o.Seed.IsNumeric(), "query seeds are strings")
	assert.Equal(t, "#fff", *o.StrokeColor)
	assert.Nil(t, o.SoftRate)
}

func TestServerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultServerConfig().Validate())
	assert.Error(t, ServerConfig{}.Validate())
	assert.Error(t, ServerConfig{Listen: "8080"}.Validate())
	assert.Error(t, ServerConfig{Listen: ":80", StaticDir: "/definitely/not/here"}.Validate())
	assert.NoError(t, ServerConfig{Listen: "127.0.0.1:0", StaticDir: t.TempDir()}.Validate())
}

func TestHTTPServerLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewHTTPServer(ServerConfig{Listen: "127.0.0.1:0"}, testStore())
	require.NoError(t, srv.Start(ctx))
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")

	require.NoError(t, srv.Stop())
	assert.Empty(t, srv.Addr())
	assert.Error(t, srv.Start(ctx), "stopped servers do not restart")
}
