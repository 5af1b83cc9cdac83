// Package module holds the module contract plus the typed port lookup.
// It sits below modkit so modules can reference the contract without
// importing the builder machinery
package module

import (
	phttp "marginalia/internal/platform/net/http"
)

// Module mirrors modkit.Module
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
