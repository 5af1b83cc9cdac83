package module

import (
	"time"

	"marginalia/internal/platform/config"
)

// Options holds configuration options for the import service
type Options struct {
	Workers            int
	DelayPerFile       time.Duration
	MaxRetries         int
	RetryBase          time.Duration
	FetchTimeout       time.Duration
	ReadTimeout        time.Duration
	MaxFiles           int
	InsertChunk        int
	SourcesConcurrency int
}

// FromConfig reads the importer options from config with CORE_IMPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	im := cfg.Prefix("CORE_IMPORT_")
	return Options{
		Workers:            im.MayInt("WORKERS", 4),
		DelayPerFile:       im.MayDuration("DELAY", 0),
		MaxRetries:         im.MayInt("RETRIES", 3),
		RetryBase:          im.MayDuration("RETRY_BASE", 500*time.Millisecond),
		FetchTimeout:       im.MayDuration("FETCH_TIMEOUT", 10*time.Minute),
		ReadTimeout:        im.MayDuration("READ_TIMEOUT", 10*time.Minute),
		MaxFiles:           im.MayInt("MAX_FILES", 0),
		InsertChunk:        im.MayInt("INSERT_CHUNK", 1000),
		SourcesConcurrency: im.MayInt("SOURCES_CONCURRENCY", 2),
	}
}
