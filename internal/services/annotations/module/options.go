package module

import "marginalia/internal/platform/config"

// Options holds configuration settings for the annotations module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_ANNOTATIONS_")
	return Options{
		HardLimit: af.MayInt("HARD_LIMIT", 100),
	}
}
