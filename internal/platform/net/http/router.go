package http

import "net/http"

// Handler is the platform request handler shape
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the mounting surface modules build routes against. It
// exposes less than chi on purpose; routes that stay inside it keep
// working if the mux underneath ever changes
type Router interface {
	// verb routes
	Get(path string, h Handler)
	Post(path string, h Handler)
	Put(path string, h Handler)
	Patch(path string, h Handler)
	Delete(path string, h Handler)
	Options(path string, h Handler)

	// composition
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	// escape hatches for prebuilt handlers and server mounting
	Handle(path string, h http.Handler)
	Mux() http.Handler
}
