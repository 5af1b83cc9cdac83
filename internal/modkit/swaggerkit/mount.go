// Package swaggerkit mounts the Swagger UI and the spec it renders.
// With the swag build tag the spec comes from the generated docs package;
// otherwise a skeleton stands in so the route still answers
package swaggerkit

import (
	"net/http"

	phttp "marginalia/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// docsBase is where the UI and its spec live
const docsBase = "/api/docs"

// Mount hangs the UI off docsBase when enabled and is a no-op otherwise
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get(docsBase, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, docsBase+"/", http.StatusPermanentRedirect)
	})
	r.Get(docsBase+"/doc.json", serveDocJSON())
	r.Handle(docsBase+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL(docsBase+"/doc.json"),
	))
}
