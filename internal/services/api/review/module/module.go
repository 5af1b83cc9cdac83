// Package module wires review into the API using modkit
package module

import (
	modkit "marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	str "marginalia/internal/platform/strings"
	reviewhttp "marginalia/internal/services/api/review/http"
	reviewsvc "marginalia/internal/services/api/review/service"
	rvdom "marginalia/internal/services/review/domain"
)

// Ports declares the worker ports this API module must be given via
// WithPorts. The queue itself lives in services/review; the API only
// enqueues and reads status
type Ports struct {
	Enqueuer rvdom.EnqueuePort
	Status   rvdom.StatusPort
}

// Module serves the review submit and status endpoints
type Module struct {
	deps     modkit.Deps
	opts     modkit.Built
	register func(httpkit.Router)

	svc reviewsvc.Service
}

// New constructs a review API module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("review"),
		modkit.WithPrefix("/review"),
	}, opts...)...)

	injected, ok := b.Ports.(Ports)
	if !ok || injected.Enqueuer == nil || injected.Status == nil {
		panic("review API module requires Enqueuer and Status ports (from services/review)")
	}

	svc := reviewsvc.New(injected.Enqueuer, injected.Status)

	m := &Module{deps: deps, opts: b, svc: svc}
	m.register = func(r httpkit.Router) {
		reviewhttp.Register(r, m.svc)
		b.Register(r)
	}
	return m
}

// MountRoutes mounts the review routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.opts.Prefix), m.opts.Mw, func(rr httpkit.Router) {
		m.register(m.opts.Subrouter(rr))
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.opts.Name, "module name") }

// Ports returns nil; the module consumes worker ports, it exports none
func (m *Module) Ports() any { return nil }
