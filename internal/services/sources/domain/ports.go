package domain

import "context"

// RegistryPort mints and resolves source ids.
// EnsureSources is called on the import hot path, so implementations must be
// safe for concurrent use and idempotent
type RegistryPort interface {
	// EnsureSources upserts the given names and returns name -> id for every
	// non-blank name. Existing rows get their last_seen bumped
	EnsureSources(ctx context.Context, names []string) (map[string]string, error)

	// ByName returns one source
	ByName(ctx context.Context, name string) (Source, error)
}

// SeederPort backfills registry windows from stored documents
type SeederPort interface {
	SeedFromDocuments(ctx context.Context, r SeedRange) error
}

// RefresherPort recomputes stats for sources whose next_refresh_at is due
type RefresherPort interface {
	RefreshDue(ctx context.Context, p RefreshParams) (int, error)
}

// WorkerPort runs the long-lived refresh loop
type WorkerPort interface {
	Run(ctx context.Context) error
}
