// Package module wires annotations into the API using modkit
package module

import (
	modkit "marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	str "marginalia/internal/platform/strings"
	anndom "marginalia/internal/services/annotations/domain"
	annotationshttp "marginalia/internal/services/api/annotations/http"
	annotationssvc "marginalia/internal/services/api/annotations/service"
)

// Ports declares the worker port this API module must be given via WithPorts
type Ports struct {
	Query anndom.QueryPort
}

// Module serves annotation sample and per-document lookups
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	svc annotationssvc.Service
}

// New constructs an annotations module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("annotations"),
		modkit.WithPrefix("/annotations"),
	}, opts...)...)

	injected, ok := b.Ports.(Ports)
	if !ok || injected.Query == nil {
		panic("annotations API module requires Query port (from services/annotations)")
	}

	svc := annotationssvc.New(injected.Query)

	m := &Module{deps: deps, opts: b, svc: svc}
	m.register = func(r httpkit.Router) {
		annotationshttp.Register(r, m.svc)
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the annotations routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; the module consumes the worker query port, it exports none
func (m *Module) Ports() any { return nil }
