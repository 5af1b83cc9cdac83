package module

import (
	"time"

	"marginalia/internal/platform/config"
)

// Options for the rollups module
type Options struct {
	Workers         int
	DetectorVersion int
	RetentionMode   string
	EnableLeases    bool
	LeaseTTL        time.Duration
}

// FromConfig fills options from environment
// CORE_ROLLUPS_WORKERS (default 2) is the number of concurrent resume workers
// CORE_ROLLUPS_DET_VERSION (default 1) is the detector version stamped on daily slices
// CORE_ROLLUPS_RETENTION_MODE (default "full") is the raw retention mode: "full", "aggressive", "timebox:Nd"
// CORE_ROLLUPS_LEASES (default true) guards day processing with the rollup_days lease
// CORE_ROLLUPS_LEASE_TTL (default 3m) bounds how long a dead worker blocks a day
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_ROLLUPS_")
	return Options{
		Workers:         n.MayInt("WORKERS", 2),
		DetectorVersion: n.MayInt("DET_VERSION", 1),
		RetentionMode:   n.MayString("RETENTION_MODE", "full"),
		EnableLeases:    n.MayBool("LEASES", true),
		LeaseTTL:        n.MayDuration("LEASE_TTL", 3*time.Minute),
	}
}
