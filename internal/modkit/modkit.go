// Package modkit assembles feature modules. A module owns its routes and
// exposes typed ports for cross wiring; binaries build them from shared
// Deps and mount them on the router seam
package modkit

import (
	phttp "marginalia/internal/platform/net/http"
)

// Module is everything a binary needs from a feature
type Module interface {
	// MountRoutes attaches the module's endpoints to r
	MountRoutes(r phttp.Router)

	// Ports returns the module's port bundle for sibling modules
	Ports() any

	// Name identifies the module in logs
	Name() string
}
