// Package httpkit is the routing surface feature modules build against.
// It re-exports the platform router seam and the mount helpers, so module
// and handler code never imports internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "marginalia/internal/platform/net/http"
)

// Router is the platform router seam, re-exported for module signatures
type Router = phttp.Router

// Get mounts a handler that takes no request body. The return value is
// wrapped in the standard envelope; errors pick their own status
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}

// PostJSON mounts a typed JSON handler. The body is decoded into In and
// validated before h runs, so handlers only ever see well-formed input
func PostJSON[In any](r Router, path string, h func(*http.Request, In) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}
