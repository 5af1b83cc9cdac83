// Package domain defines the core types and ports for the sources registry
package domain

import "time"

// Source is one registry row: a named submitter of documents with cached stats
type Source struct {
	ID              string // uuid
	Name            string
	FirstSeen       time.Time
	LastSeen        time.Time
	Documents       int64
	Annotations     int64
	LastRefreshedAt *time.Time
	NextRefreshAt   *time.Time
}

// SeedRange defines the sweep window for seeding the registry from documents
type SeedRange struct {
	Since time.Time // inclusive
	Until time.Time // optional; zero = now
	Limit int       // 0 = service default
}

// RefreshParams controls a due-refresh sweep
type RefreshParams struct {
	Limit int // 0 = service default batch
}
