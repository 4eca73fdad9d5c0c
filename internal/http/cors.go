package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Wrap mounts h under basePath (when set) and applies the CORS policy for
// the given origins. An empty origin list allows any origin.
func Wrap(h http.Handler, basePath string, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := h
	if base := "/" + strings.Trim(basePath, "/"); base != "/" {
		handler = http.StripPrefix(base, h)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(handler)
}
