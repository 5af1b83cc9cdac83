package module

import (
	"time"

	"marginalia/internal/platform/config"
)

// Options holds configuration settings for the review module
type Options struct {
	Concurrency    int
	QueueTakeBatch int
	LeaseFor       time.Duration
	RetryBase      time.Duration
	MaxAttempts    int
	Detver         int
	Kinds          string // CSV of kind names; empty = default content kinds
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_REVIEW_")
	return Options{
		Concurrency:    rf.MayInt("WORKER_CONCURRENCY", 4),
		QueueTakeBatch: rf.MayInt("QUEUE_TAKE_BATCH", 32),
		LeaseFor:       rf.MayDuration("LEASE_FOR", time.Minute),
		RetryBase:      rf.MayDuration("RETRY_BASE", 500*time.Millisecond),
		MaxAttempts:    rf.MayInt("MAX_ATTEMPTS", 5),
		Detver:         rf.MayInt("DETVER", 1),
		Kinds:          rf.MayString("KINDS", ""),
	}
}
