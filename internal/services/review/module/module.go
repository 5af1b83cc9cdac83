// Package module implements the review module
package module

import (
	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
	"marginalia/internal/core/resolve"
	"marginalia/internal/core/rulepack"
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/review/domain"
	"marginalia/internal/services/review/service"
)

// Ports exposed by the review module
type Ports struct {
	Worker   domain.WorkerPort
	Enqueuer domain.EnqueuePort
	Status   domain.StatusPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new review module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("review"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("review module: expected WithPorts(review/domain.Ports)")
	}
	if ports.Documents == nil || ports.Annotations == nil || ports.Marker == nil {
		panic("review module: Ports missing Documents, Annotations or Marker")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Concurrency != 0 {
		cfg.Concurrency = overrides.Concurrency
	}
	if overrides.QueueTakeBatch != 0 {
		cfg.QueueTakeBatch = overrides.QueueTakeBatch
	}
	if overrides.LeaseFor != 0 {
		cfg.LeaseFor = overrides.LeaseFor
	}
	if overrides.RetryBase != 0 {
		cfg.RetryBase = overrides.RetryBase
	}
	if overrides.MaxAttempts != 0 {
		cfg.MaxAttempts = overrides.MaxAttempts
	}
	if overrides.Detver != 0 {
		cfg.Detver = overrides.Detver
	}
	if overrides.Kinds != "" {
		cfg.Kinds = overrides.Kinds
	}

	kinds := checking.DefaultKinds()
	if cfg.Kinds != "" {
		ks, err := checking.ParseKinds(cfg.Kinds)
		if err != nil {
			panic("review module: bad kinds config: " + err.Error())
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

	svc := service.New(
		deps.PG,
		ports.Documents,
		ports.Annotations,
		ports.Marker,
		resolve.New(det),
		service.Config{
			Concurrency:    cfg.Concurrency,
			QueueTakeBatch: cfg.QueueTakeBatch,
			LeaseFor:       cfg.LeaseFor,
			RetryBase:      cfg.RetryBase,
			MaxAttempts:    cfg.MaxAttempts,
			Detver:         cfg.Detver,
			Kinds:          kinds,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc, Enqueuer: svc, Status: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "review" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the worker has no HTTP surface
func (m *Module) MountRoutes(_ httpkit.Router) {}
