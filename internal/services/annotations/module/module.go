// Package module implements the annotations service module
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/annotations/domain"
	"marginalia/internal/services/annotations/repo"
	"marginalia/internal/services/annotations/service"
)

// Ports exposed by the annotations module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
}

// Module implements the annotations service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new annotations module.
// The CH sink engages only when deps carry a ClickHouse seam
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(
		deps.PG,
		binder,
		repo.NewSink(deps.CH),
		service.Config{HardLimit: opts.HardLimit},
	)

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Query:  svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "annotations" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
