// Package module wires the sources service and exposes its ports
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"

	"marginalia/internal/services/sources/service"
)

// Module defines the sources module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the sources module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults from config then apply overrides from CLI (if provided)
	opts := FromConfig(deps.Cfg)

	if overrides.Batch != 0 {
		opts.Batch = overrides.Batch
	}
	if overrides.Tick != 0 {
		opts.Tick = overrides.Tick
	}
	if overrides.SeedLimit != 0 {
		opts.SeedLimit = overrides.SeedLimit
	}
	if overrides.DryRun {
		opts.DryRun = true
	}

	svc := service.New(deps, service.Config{
		Batch:            opts.Batch,
		Tick:             opts.Tick,
		Lease:            opts.Lease,
		RetryBase:        opts.RetryBase,
		DryRun:           opts.DryRun,
		DefaultSeedLimit: opts.SeedLimit,
		Cadence: service.CadenceConfig{
			HighDocs:  opts.HighDocs,
			MidDocs:   opts.MidDocs,
			HighEvery: opts.HighEvery,
			MidEvery:  opts.MidEvery,
			LowEvery:  opts.LowEvery,
			JitterPct: opts.JitterPct,
		},
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Registry:  svc,
		Seeder:    svc,
		Refresher: svc,
		Worker:    svc,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "sources" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for sources (it's a worker/CLI service)
func (m *Module) MountRoutes(_ httpkit.Router) {}
