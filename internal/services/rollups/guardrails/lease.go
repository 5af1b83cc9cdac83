// Package guardrails provides worker lease helpers for rollup processing
package guardrails

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"marginalia/internal/modkit"
	"marginalia/internal/platform/store"
)

// ErrLeaseHeld signals another worker owns the day already
var ErrLeaseHeld = fmt.Errorf("rollups: day lease already held")

// MakeDayLease claims the lease columns on rollup_days (auto-reclaim via expires_at).
// Uses: lease_claimed_at, lease_owner, lease_expires_at.
// The day row is created on first claim so ad hoc days work too
func MakeDayLease(
	deps modkit.Deps,
	owner string,
	ttl time.Duration,
) func(ctx context.Context, day time.Time, do func(context.Context) error) error {
	owner = fmt.Sprintf("%s:%d", owner, os.Getpid())

	if ttl <= 0 {
		ttl = 3 * time.Minute
	}

	toInterval := func(d time.Duration) string { return fmt.Sprintf("%d seconds", int64(d/time.Second)) }

	return func(ctx context.Context, day time.Time, do func(context.Context) error) error {
		day = day.UTC().Truncate(24 * time.Hour)

		var claimed bool
		if err := deps.PG.Tx(ctx, func(q store.RowQuerier) error {
			if _, err := q.Exec(ctx, `
				INSERT INTO rollup_days (day_utc, status)
				VALUES ($1, 'pending')
				ON CONFLICT (day_utc) DO NOTHING
			`, day); err != nil {
				return err
			}
			row := q.QueryRow(ctx, `
				UPDATE rollup_days
				   SET lease_claimed_at = now(), lease_owner = $2, lease_expires_at = now() + ($3)::interval
				 WHERE day_utc = $1
				   AND (lease_claimed_at IS NULL OR lease_expires_at <= now())
				RETURNING true
			`, day, owner, toInterval(ttl))
			var ok bool
			if err := row.Scan(&ok); err != nil {
				if errors.Is(err, stdsql.ErrNoRows) {
					return nil // live lease elsewhere -> couldn't claim
				}
				return err
			}
			claimed = ok
			return nil
		}); err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}
		return do(ctx)
	}
}
