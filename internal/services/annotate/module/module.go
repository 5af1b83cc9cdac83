// Package module implements the annotate module
package module

import (
	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
	"marginalia/internal/core/resolve"
	"marginalia/internal/core/rulepack"
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/annotate/domain"
	"marginalia/internal/services/annotate/service"
)

// Ports exposed by the annotate module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new annotate module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("annotate"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("annotate module: expected WithPorts(annotate/domain.Ports)")
	}
	if ports.Documents == nil || ports.Stamper == nil || ports.Annotations == nil {
		panic("annotate module: Ports missing Documents, Stamper or Annotations")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Detver != 0 {
		cfg.Detver = overrides.Detver
	}
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.PageSize != 0 {
		cfg.PageSize = overrides.PageSize
	}
	if overrides.MaxRangeHours != 0 {
		cfg.MaxRangeHours = overrides.MaxRangeHours
	}
	if overrides.Kinds != "" {
		cfg.Kinds = overrides.Kinds
	}
	// bool override wins (defaults false if caller didn't set)
	cfg.DryRun = overrides.DryRun

	kinds := checking.DefaultKinds()
	if cfg.Kinds != "" {
		ks, err := checking.ParseKinds(cfg.Kinds)
		if err != nil {
			panic("annotate module: bad kinds config: " + err.Error())
		}
		kinds = ks
	}

	rp, err := rulepack.Load()
	if err != nil {
		panic(err)
	}
	det, err := detector.New(rp)
	if err != nil {
		panic(err)
	}

	runner := service.New(
		ports.Documents,
		ports.Stamper,
		ports.Annotations,
		resolve.New(det),
		service.Config{
			Detver:        cfg.Detver,
			Workers:       cfg.Workers,
			PageSize:      cfg.PageSize,
			MaxRangeHours: cfg.MaxRangeHours,
			DryRun:        cfg.DryRun,
			Kinds:         kinds,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "annotate" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
