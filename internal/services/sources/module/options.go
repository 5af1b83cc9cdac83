package module

import (
	"time"

	"marginalia/internal/platform/config"
)

// Options controls sources behavior. Values may also be read from env
type Options struct {
	Batch     int
	Tick      time.Duration
	Lease     time.Duration
	RetryBase time.Duration
	DryRun    bool
	SeedLimit int

	// Cadence bands by document volume
	HighDocs  int
	MidDocs   int
	HighEvery time.Duration
	MidEvery  time.Duration
	LowEvery  time.Duration
	JitterPct int
}

// FromConfig reads options using the CORE_SOURCES_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SOURCES_")
	return Options{
		Batch:     sc.MayInt("BATCH", 64),
		Tick:      sc.MayDuration("TICK", 2*time.Second),
		Lease:     sc.MayDuration("LEASE", 2*time.Minute),
		RetryBase: sc.MayDuration("RETRY_BASE", 30*time.Second),
		DryRun:    sc.MayBool("DRY_RUN", false),
		SeedLimit: sc.MayInt("SEED_LIMIT", 0),

		HighDocs:  sc.MayInt("HIGH_DOCS", 10000),
		MidDocs:   sc.MayInt("MID_DOCS", 1000),
		HighEvery: sc.MayDuration("HIGH_EVERY", time.Hour),
		MidEvery:  sc.MayDuration("MID_EVERY", 6*time.Hour),
		LowEvery:  sc.MayDuration("LOW_EVERY", 24*time.Hour),
		JitterPct: sc.MayInt("JITTER_PCT", 10),
	}
}
