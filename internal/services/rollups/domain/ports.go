// Package domain defines rollup core ports and types
package domain

import (
	"context"
	"time"
)

// RunnerPort is the public entrypoint exposed by the module.
// Operators drive single days and ranges via the CLI; the nightly
// cron drains queued days via RunResume
type RunnerPort interface {
	// ApplyDay rebuilds the daily slice for exactly one day (idempotent per day+detver)
	ApplyDay(ctx context.Context, day time.Time) error

	// RunRange queues [start,end] inclusive and rebuilds each day.
	// Finished days in the interval are re-queued, so ranges double as rebuild jobs
	RunRange(ctx context.Context, start, end time.Time) error

	// RunResume drains days that are queued or due for retry
	RunResume(ctx context.Context) error
}

// StorageRepo encapsulates all storage actions a rollup run performs.
// Typical impl: PG for rollup_days state; CH for the aggregate and pruning
type StorageRepo interface {
	// SeedDays queues the given days, re-queuing finished ones.
	// Days currently running are left alone
	SeedDays(ctx context.Context, days []time.Time) (int, error)

	// Start transitions the day to running, creating its row when missing.
	// Mutual exclusion lives in the lease, not here
	Start(ctx context.Context, day time.Time) error

	// BuildDaily rebuilds the day's slice of the daily aggregate.
	// Safe to re-run: the slice is cleared before reinserting
	BuildDaily(ctx context.Context, day time.Time, detver int) (rows int, err error)

	// PruneRaw applies the configured retention policy to the raw stream:
	//   - "full": no-op
	//   - "timebox:<Nd>": delete the day once it is older than the cutoff
	//   - "aggressive": delete the day's raw rows immediately
	// Returns counts for book-keeping
	PruneRaw(ctx context.Context, day time.Time, retention string) (deleted, spared int, err error)

	// Finish records metrics, sets the terminal status, and clears the lease
	Finish(ctx context.Context, day time.Time, fin FinishInfo) error

	// NextDayNeedingWork claims the next queued or abandoned day
	NextDayNeedingWork(ctx context.Context) (time.Time, bool, error)
}

// FinishInfo captures metrics/outcomes for one day of rollup work
type FinishInfo struct {
	Status     string // "done" or "error"
	DetVer     int
	RowsRolled int
	DeletedRaw int
	SparedRaw  int
	RollupMS   int
	PruneMS    int
	TotalMS    int
	ErrText    string
}
