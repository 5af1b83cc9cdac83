// Package module provides the importer module implementation
package module

import (
	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/importer/domain"
	"marginalia/internal/services/importer/ingest"
	"marginalia/internal/services/importer/repo"
	"marginalia/internal/services/importer/service"
)

// Ports exposed by the importer module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the importer module
// It wires up all the adapters and the service using config from deps.Cfg
// It does not mount any routes.
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("importer"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("importer module: expected WithPorts(importer/domain.Ports)")
	}
	if ports.Documents == nil || ports.Sources == nil {
		panic("importer module: Ports missing Documents or Sources")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.MaxRetries != 0 {
		cfg.MaxRetries = overrides.MaxRetries
	}
	if overrides.MaxFiles != 0 {
		cfg.MaxFiles = overrides.MaxFiles
	}
	if overrides.DelayPerFile != 0 {
		cfg.DelayPerFile = overrides.DelayPerFile
	}

	svc := service.New(
		deps.PG, repo.NewPG(),
		ingest.NewFetcher(deps),    // uses CORE_CORPUS_* from deps.Cfg
		ingest.NewReaderFactory(),  // wraps the corpus reader
		ingest.NewExtractor(),      // sanitize + zone-derived markers
		ports.Documents,
		ports.Sources,
		service.Config{
			Workers:            cfg.Workers,
			DelayPerFile:       cfg.DelayPerFile,
			MaxRetries:         cfg.MaxRetries,
			RetryBase:          cfg.RetryBase,
			FetchTimeout:       cfg.FetchTimeout,
			ReadTimeout:        cfg.ReadTimeout,
			MaxFiles:           cfg.MaxFiles,
			InsertChunk:        cfg.InsertChunk,
			SourcesConcurrency: cfg.SourcesConcurrency,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "importer" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as importer has no routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
