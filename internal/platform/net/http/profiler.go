// Package http hosts the server, router seam, and response envelope.
// Profiler wiring lives here so cmd binaries can opt in with one call
package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler exposes the pprof mux under prefix (for example "/debug")
// when enabled. Disabled installs hit the router's usual 404
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	inner := stdhttp.StripPrefix(prefix, mw.Profiler())
	serve := func(w stdhttp.ResponseWriter, req *stdhttp.Request) { inner.ServeHTTP(w, req) }

	// chi has no Mount on the seam, so register the prefix root and the subtree
	r.Get(prefix, serve)
	r.Get(prefix+"/*", serve)
}
