package httpkit

import "net/http"

// MountUnder scopes mount to prefix and applies mw to every route
// registered inside. Modules use this to hang their route tree off the
// shared router without leaking their middleware onto siblings
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPIV1 mounts the versioned API surface under /api/v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/v1", mw, mount)
}
