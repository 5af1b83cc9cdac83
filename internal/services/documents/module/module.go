// Package module provides the documents module
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/documents/domain"
	"marginalia/internal/services/documents/repo"
	"marginalia/internal/services/documents/service"
)

// Ports exposed by the documents module
type Ports struct {
	Writer domain.WriterPort
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new documents module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(deps.PG, binder, service.Config{
		HardLimit: opts.HardLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Writer: svc, Reader: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "documents" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
