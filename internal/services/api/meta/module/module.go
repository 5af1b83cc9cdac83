// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"marginalia/internal/core/rulepack"
	modkit "marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/platform/store"
	str "marginalia/internal/platform/strings"

	metahttp "marginalia/internal/services/api/meta/http"
)

// Module serves version, health and readiness endpoints
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	detver := 0
	if rp, err := rulepack.Load(); err == nil {
		detver = rp.Version
	}

	// the pg runner only pings through its concrete pool; probe what we can
	var pgProbe store.Pinger
	if p, ok := deps.PG.(store.Pinger); ok {
		pgProbe = p
	}
	var chProbe store.Pinger
	if deps.CH != nil {
		chProbe = deps.CH
	}

	m := &Module{deps: deps, opts: b, startedAt: time.Now()}
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName:     "marginalia-api",
			StartedAt:       m.startedAt,
			DetectorVersion: detver,
			PG:              pgProbe,
			CH:              chProbe,
		})
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the meta routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; meta exposes no cross-module port
func (m *Module) Ports() any { return nil }
