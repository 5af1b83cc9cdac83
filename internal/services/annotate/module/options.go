package module

import "marginalia/internal/platform/config"

// Options holds configuration settings for the annotate module
type Options struct {
	Detver        int
	Workers       int
	PageSize      int
	MaxRangeHours int
	DryRun        bool
	Kinds         string // CSV of kind names; empty = default content kinds
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_ANNOTATE_")
	return Options{
		Detver:        af.MayInt("DETVER", 1),
		Workers:       af.MayInt("WORKERS", 2),
		PageSize:      af.MayInt("PAGE_SIZE", 1000),
		MaxRangeHours: af.MayInt("MAX_RANGE_HOURS", 0),
		DryRun:        af.MayBool("DRY_RUN", false),
		Kinds:         af.MayString("KINDS", ""),
	}
}
