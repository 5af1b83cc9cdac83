package service

import (
	"context"
	"time"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/sources/domain"
)

// RefreshDue claims due sources and recomputes their cached stats.
// Returns the number of refreshed rows. Per-source failures are rescheduled
// and do not fail the sweep
func (s *Svc) RefreshDue(ctx context.Context, p domain.RefreshParams) (int, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.Batch
	}

	var due []domain.Source
	if err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		xs, err := s.binder.Bind(q).ClaimDue(ctx, limit, s.cfg.Lease)
		if err == nil {
			due = xs
		}
		return err
	}); err != nil {
		return 0, err
	}

	n := 0
	for _, src := range due {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if s.cfg.DryRun {
			n++
			continue
		}
		next := nextRefresh(s.cfg.Cadence, src.Documents, time.Now().UTC())
		if err := s.refreshOne(ctx, src.ID, next); err != nil {
			s.nack(ctx, src.ID)
			s.log.Warn().Str("source", src.Name).Dur("backoff", s.cfg.RetryBase).Err(err).
				Msg("sources: refresh failed scheduled retry")
			continue
		}
		n++
	}
	return n, nil
}

func (s *Svc) refreshOne(ctx context.Context, id string, next time.Time) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).RefreshStats(ctx, id, next)
	})
}

func (s *Svc) nack(ctx context.Context, id string) {
	_ = s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Nack(ctx, id, s.cfg.RetryBase)
	})
}
