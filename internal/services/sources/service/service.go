// Package service contains the sources registry workflows
package service

import (
	"math/rand"
	"time"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/logger"
	"marginalia/internal/services/sources/repo"
)

// CadenceConfig controls how often source stats get recomputed.
// Busier sources have faster-moving counters, so they refresh more often
type CadenceConfig struct {
	HighDocs  int
	MidDocs   int
	HighEvery time.Duration
	MidEvery  time.Duration
	LowEvery  time.Duration
	JitterPct int // 0..100 extra percentage of the cadence
}

// Config carries runtime knobs for the registry and refresh loop
type Config struct {
	Batch            int           // claim batch per sweep
	Tick             time.Duration // worker poll interval
	Lease            time.Duration // claim reservation window
	RetryBase        time.Duration // reschedule delay after a failed refresh
	DryRun           bool
	DefaultSeedLimit int
	Cadence          CadenceConfig
}

// Svc implements the sources registry service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	log    logger.Logger
	cfg    Config
}

// New constructs the sources service
func New(deps modkit.Deps, cfg Config) *Svc {
	if deps.PG == nil {
		panic("sources.Service requires a non nil TxRunner")
	}
	cfg = withCadenceDefaults(cfg)
	return &Svc{
		db:     deps.PG,
		binder: repo.NewPG(),
		log:    deps.Log,
		cfg:    cfg,
	}
}

// withCadenceDefaults fills zero values with the production defaults
func withCadenceDefaults(cfg Config) Config {
	c := cfg.Cadence

	if c.HighDocs == 0 {
		c.HighDocs = 10000
	}
	if c.MidDocs == 0 {
		c.MidDocs = 1000
	}
	if c.HighEvery == 0 {
		c.HighEvery = time.Hour
	}
	if c.MidEvery == 0 {
		c.MidEvery = 6 * time.Hour
	}
	if c.LowEvery == 0 {
		c.LowEvery = 24 * time.Hour
	}
	if c.JitterPct == 0 {
		c.JitterPct = 10
	}

	cfg.Cadence = c

	if cfg.Batch <= 0 {
		cfg.Batch = 64
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 2 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 2 * time.Minute
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 30 * time.Second
	}
	return cfg
}

// nextRefresh picks the cadence band for a source by document volume and
// spreads it with jitter so big import batches do not come due in lockstep
func nextRefresh(cc CadenceConfig, docs int64, now time.Time) time.Time {
	var every time.Duration
	switch {
	case docs >= int64(cc.HighDocs):
		every = cc.HighEvery
	case docs >= int64(cc.MidDocs):
		every = cc.MidEvery
	default:
		every = cc.LowEvery
	}
	if cc.JitterPct > 0 {
		if span := every * time.Duration(cc.JitterPct) / 100; span > 0 {
			every += time.Duration(rand.Int63n(int64(span)))
		}
	}
	return now.Add(every)
}
