package web

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sugallat/squarebg/internal/assets"
)

// RouterConfig is everything the HTTP handlers depend on.
type RouterConfig struct {
	Sections  SectionSource
	Metrics   *Metrics
	Logger    Logger
	StaticDir string
	Dev       bool
}

// NewRouter builds the standard routes:
// - /api/v1/* for rendered images and section info
// - /healthz and /metrics
// - / for the preview page
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.Dev {
		r.Use(WithDevCORS)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	api := &apiV1{sections: cfg.Sections, metrics: cfg.Metrics, logger: cfg.Logger}
	r.Route("/api/v1", api.routes)

	r.Handle("/*", StaticUIHandler(cfg.StaticDir))
	return r
}

// StaticUIHandler serves either the embedded preview page or a directory.
func StaticUIHandler(staticDir string) http.Handler {
	if staticDir == "" {
		return cleanPath(http.FileServer(http.FS(assets.WebUI)))
	}
	if st, err := os.Stat(staticDir); err != nil || !st.IsDir() {
		return http.HandlerFunc(http.NotFound)
	}
	return cleanPath(http.FileServer(http.Dir(staticDir)))
}

func cleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
