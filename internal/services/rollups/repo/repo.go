// Package repo provides the rollup storage repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/store"
	rodom "marginalia/internal/services/rollups/domain"
)

// NewHybrid returns a binder that uses
// - Postgres for rollup_days coordination/state
// - ClickHouse for the daily aggregate and raw pruning
func NewHybrid(ch store.Clickhouse) repokit.Binder[rodom.StorageRepo] {
	return &hybridBinder{ch: ch}
}

type hybridBinder struct{ ch store.Clickhouse }

func (b *hybridBinder) Bind(q repokit.Queryer) rodom.StorageRepo {
	return &hybridStore{pg: q, ch: b.ch}
}

type hybridStore struct {
	pg repokit.Queryer
	ch store.Clickhouse
}

func dayStart(t time.Time) time.Time { return t.UTC().Truncate(24 * time.Hour) }

// SeedDays queues the given days, re-queuing finished ones so operator
// ranges rebuild their slices. Days currently running are left alone
func (s *hybridStore) SeedDays(ctx context.Context, days []time.Time) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}
	xs := make([]time.Time, 0, len(days))
	for _, d := range days {
		xs = append(xs, dayStart(d))
	}
	res, err := s.pg.Exec(ctx, `
	  INSERT INTO rollup_days (day_utc, status)
	  SELECT x, 'pending'
	    FROM unnest($1::timestamptz[]) AS t(x)
	  ON CONFLICT (day_utc) DO UPDATE SET status = 'pending', next_attempt_at = now()
	  WHERE rollup_days.status <> 'running'`,
		xs,
	)
	if err != nil {
		return 0, err
	}
	return int(res.RowsAffected()), nil
}

// Start transitions the day to running, creating its row when missing.
// No status guard here: the lease is the mutual exclusion mechanism,
// and direct runs are allowed to rebuild finished days
func (s *hybridStore) Start(ctx context.Context, day time.Time) error {
	_, err := s.pg.Exec(ctx, `
	  INSERT INTO rollup_days (day_utc, status, started_at, attempts)
	  VALUES ($1, 'running', now(), 1)
	  ON CONFLICT (day_utc) DO UPDATE
	     SET status     = 'running',
	         started_at = COALESCE(rollup_days.started_at, now()),
	         attempts   = rollup_days.attempts + 1`,
		dayStart(day),
	)
	return err
}

func (s *hybridStore) BuildDaily(ctx context.Context, day time.Time, detver int) (int, error) {
	start := dayStart(day)
	end := start.Add(24 * time.Hour)

	// If no raw annotations exist for this day, keep the existing slice and skip
	raw, err := s.ch.ScalarUInt64(ctx, `
		SELECT toUInt64(count())
		FROM marginalia.annotations
		WHERE created_at >= ? AND created_at < ?`,
		start, end,
	)
	if err != nil {
		return 0, err
	}
	if raw == 0 {
		return 0, nil
	}

	// Clear the day slice (idempotent) and block until applied so reads are consistent
	if err := s.ch.Exec(ctx, `
		ALTER TABLE marginalia.annotations_daily
		DELETE WHERE day = toDate(?) AND detver = ?
		SETTINGS mutations_sync=1`,
		start, detver,
	); err != nil {
		return 0, err
	}

	// Rebuild from the raw stream
	if err := s.ch.Exec(ctx, `
		INSERT INTO marginalia.annotations_daily
		(day, kind, source_id, detver, n)
		SELECT
		  toDate(created_at) AS day,
		  kind,
		  source_id,
		  ?                  AS detver,
		  count()            AS n
		FROM marginalia.annotations
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day, kind, source_id`,
		detver, start, end,
	); err != nil {
		return 0, err
	}

	// Count slice rows for metrics
	rows, err := s.ch.ScalarUInt64(ctx, `
		SELECT toUInt64(count())
		FROM marginalia.annotations_daily
		WHERE day = toDate(?) AND detver = ?`,
		start, detver,
	)
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// PruneRaw applies the configured retention policy to the raw stream.
//   - "full": no-op
//   - "timebox:<Nd>": delete the day once it is older than the cutoff
//   - "aggressive": delete the day's raw rows immediately
//
// Returns (deletedRaw, sparedRawForDay), error
func (s *hybridStore) PruneRaw(ctx context.Context, day time.Time, retention string) (int, int, error) {
	start := dayStart(day)
	end := start.Add(24 * time.Hour)

	mode := strings.TrimSpace(strings.ToLower(retention))
	if mode == "" {
		mode = "full"
	}

	// Day-scoped total for metrics
	total, err := s.ch.ScalarUInt64(ctx, `
		SELECT toUInt64(count())
		FROM marginalia.annotations
		WHERE created_at >= ? AND created_at < ?`,
		start, end,
	)
	if err != nil {
		return 0, 0, err
	}

	// Helper: delete this day's raw rows, synchronously
	deleteDay := func() error {
		return s.ch.Exec(ctx, `
			ALTER TABLE marginalia.annotations
			DELETE WHERE created_at >= ? AND created_at < ?
			SETTINGS mutations_sync=1`,
			start, end,
		)
	}

	switch {
	case mode == "full":
		// Keep everything for this day
		return 0, int(total), nil

	case mode == "aggressive":
		if err := deleteDay(); err != nil {
			return 0, 0, err
		}
		return int(total), 0, nil

	case strings.HasPrefix(mode, "timebox:"):
		days, perr := parseTimeboxDays(mode) // e.g., "timebox:45d"
		if perr != nil || days <= 0 {
			return 0, int(total), nil
		}
		cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
		if end.Before(cutoff) {
			if err := deleteDay(); err != nil {
				return 0, 0, err
			}
			return int(total), 0, nil
		}
		return 0, int(total), nil

	default:
		// Unknown mode -> no-op
		return 0, int(total), nil
	}
}

// parseTimeboxDays extracts the integer day window from "timebox:Nd"
func parseTimeboxDays(mode string) (int, error) {
	// Accept forms: timebox:45d, timebox:45, timebox: 45d
	s := strings.TrimPrefix(mode, "timebox:")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "d")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timebox days")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Finish records metrics, sets the terminal status, and clears the lease.
// Errored days are rescheduled with an attempts-scaled delay so resume
// retries them without spinning on the same broken day
func (s *hybridStore) Finish(ctx context.Context, day time.Time, fin rodom.FinishInfo) error {
	_, err := s.pg.Exec(ctx, `
	  UPDATE rollup_days
	     SET finished_at      = now(),
	         status           = $2,
	         detver           = $3,
	         rows_rolled      = $4,
	         deleted_raw      = $5,
	         spared_raw       = $6,
	         rollup_ms        = $7,
	         prune_ms         = $8,
	         total_ms         = $9,
	         error            = NULLIF($10,''),
	         next_attempt_at  = CASE WHEN $2 = 'error'
	             THEN now() + make_interval(mins => LEAST(120, 10 * GREATEST(attempts, 1)))
	             ELSE next_attempt_at END,
	         lease_claimed_at = NULL,
	         lease_owner      = NULL,
	         lease_expires_at = NULL
	   WHERE day_utc = $1
	`, dayStart(day),
		fin.Status, fin.DetVer, fin.RowsRolled, fin.DeletedRaw, fin.SparedRaw,
		fin.RollupMS, fin.PruneMS, fin.TotalMS, fin.ErrText,
	)
	return err
}

func (s *hybridStore) NextDayNeedingWork(ctx context.Context) (time.Time, bool, error) {
	// Claim the next queued day. Running rows older than an hour count as
	// abandoned (worker died between Start and Finish) and are reclaimed
	row := s.pg.QueryRow(ctx, `
		WITH next AS (
			SELECT day_utc
			  FROM rollup_days
			 WHERE (status IN ('pending','error') AND next_attempt_at <= now())
			    OR (status = 'running' AND started_at < now() - interval '1 hour'
			        AND (lease_expires_at IS NULL OR lease_expires_at <= now()))
			 ORDER BY day_utc
			 LIMIT 1
			 FOR UPDATE SKIP LOCKED
		)
		UPDATE rollup_days rd
		   SET status     = 'running',
		       started_at = now(),
		       attempts   = rd.attempts + 1
		  FROM next
		 WHERE rd.day_utc = next.day_utc
		RETURNING rd.day_utc
	`)
	var d time.Time
	if err := row.Scan(&d); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return d.UTC(), true, nil
}
