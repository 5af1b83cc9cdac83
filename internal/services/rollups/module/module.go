// Package module wires up the rollup service as a modkit.Module
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"

	rodom "marginalia/internal/services/rollups/domain"
	"marginalia/internal/services/rollups/guardrails"
	rorepo "marginalia/internal/services/rollups/repo"
	roservice "marginalia/internal/services/rollups/service"
)

// Ports exported by the rollups module
type Ports struct {
	Runner rodom.RunnerPort
}

// Module implements modkit.Module for the daily rollup pipeline
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs and wires the rollups module using deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := rorepo.NewHybrid(deps.CH)

	leaseFn := guardrails.MakeDayLease(deps, "rollups", opts.LeaseTTL)

	svc := roservice.New(
		deps.PG,
		binder,
		roservice.Config{
			Workers:         opts.Workers,
			DetectorVersion: opts.DetectorVersion,
			RetentionMode:   opts.RetentionMode,
			EnableLeases:    opts.EnableLeases,
		},
		leaseFn,
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "rollups" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: rollups has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
