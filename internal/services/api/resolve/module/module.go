// Package module wires resolve into the API using modkit
package module

import (
	"marginalia/internal/core/detector"
	"marginalia/internal/core/resolve"
	"marginalia/internal/core/rulepack"
	modkit "marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	str "marginalia/internal/platform/strings"
	resolvehttp "marginalia/internal/services/api/resolve/http"
	resolvesvc "marginalia/internal/services/api/resolve/service"
)

// Module serves the synchronous resolve endpoint
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	svc resolvesvc.Service
}

// New constructs a resolve module with the provided dependencies and options.
// The rulepack and detector load eagerly so a broken pack fails startup, not
// the first request
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("resolve"),
		modkit.WithPrefix("/resolve"),
	}, opts...)...)

	rp, err := rulepack.Load()
	if err != nil {
		panic(err)
	}
	det, err := detector.New(rp)
	if err != nil {
		panic(err)
	}
	svc := resolvesvc.New(resolve.New(det), rp.Version)

	m := &Module{deps: deps, opts: b, svc: svc}
	m.register = func(r httpkit.Router) {
		resolvehttp.Register(r, m.svc)
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the resolve routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; resolve exposes no cross-module port
func (m *Module) Ports() any { return nil }
