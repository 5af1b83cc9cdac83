// Package middleware adapts chi middleware behind our own names plus a few
// in-house pieces, so handlers never import chi directly
package middleware

import (
	"net/http"
	"time"

	"marginalia/internal/platform/logger"
	pstrings "marginalia/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID, then seeds the logger
// context with it so logger.C picks the id up everywhere downstream
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		seeded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := chimw.GetReqID(r.Context()); id != "" {
				r = r.WithContext(logger.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
		return chimw.RequestID(seeded)
	}
}

// RealIP rewrites RemoteAddr from X-Forwarded-For / X-Real-IP
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache stamps the headers that keep clients and proxies from caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Compress negotiates response compression at the given flate level
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level)
	return func(next http.Handler) http.Handler { return c.Handler(next) }
}

// RedirectSlashes redirects /foo/ to /foo
func RedirectSlashes() func(http.Handler) http.Handler { return chimw.RedirectSlashes }

// StripSlashes strips a trailing slash from the request path
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Heartbeat answers 200 on GET path for load-balancer probes
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// corsMethodDefaults and corsHeaderDefaults apply when the options
// leave the lists empty
var (
	corsMethodDefaults = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsHeaderDefaults = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
)

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors, filling in method and header defaults
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, corsMethodDefaults),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, corsHeaderDefaults),
		ExposedHeaders:   o.ExposedHeaders,
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
