// Package module wires stats into the API using modkit
package module

import (
	modkit "marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	str "marginalia/internal/platform/strings"
	statshttp "marginalia/internal/services/api/stats/http"
	statsrepo "marginalia/internal/services/api/stats/repo"
	statssvc "marginalia/internal/services/api/stats/service"
)

// Module serves the aggregate stats endpoints
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	svc statssvc.Service
}

// New constructs the stats module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("stats"),
		modkit.WithPrefix("/stats"),
	}, opts...)...)

	svc := statssvc.New(deps.PG, statsrepo.NewPG())

	m := &Module{deps: deps, opts: b, svc: svc}
	m.register = func(r httpkit.Router) {
		statshttp.Register(r, m.svc)
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the stats routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; stats exposes no cross-module port
func (m *Module) Ports() any { return nil }
