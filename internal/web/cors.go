package web

import (
	"net/http"

	"github.com/go-chi/cors"
)

// WithDevCORS enables permissive CORS behavior for local development.
//
// It is intended to be used only when ServerConfig.Dev is enabled.
func WithDevCORS(next http.Handler) http.Handler {
	if next == nil {
		next = http.DefaultServeMux
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"Content-Length", "ETag"},
		MaxAge:         300,
	})(next)
}
