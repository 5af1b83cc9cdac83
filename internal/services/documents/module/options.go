package module

import (
	"marginalia/internal/platform/config"
)

// Options configures the documents module
type Options struct {
	HardLimit int
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	df := cfg.Prefix("CORE_DOCUMENTS_")
	return Options{
		HardLimit: df.MayInt("HARD_LIMIT", 5000),
	}
}
