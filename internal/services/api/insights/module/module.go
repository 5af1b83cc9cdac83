// Package module wires the insights API into HTTP via modkit
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	str "marginalia/internal/platform/strings"

	insightshttp "marginalia/internal/services/api/insights/http"
	"marginalia/internal/services/api/insights/repo"
	"marginalia/internal/services/api/insights/service"
)

// Module serves the insights rollup queries
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	svc *service.Service
}

// New constructs the insights module. The repo binder picks ClickHouse
// when deps carry a CH seam and falls back to Postgres otherwise
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("insights"),
		modkit.WithPrefix("/insights"),
	}, opts...)...)

	binder := repo.NewHybrid(deps.CH)
	svc := service.New(deps.PG, binder)

	m := &Module{deps: deps, opts: b, svc: svc}
	m.register = func(r httpkit.Router) {
		insightshttp.Register(r, m.svc)
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the insights routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name is the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; insights exposes no cross-module port
func (m *Module) Ports() any { return nil }
