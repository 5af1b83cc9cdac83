package service

import (
	"context"
	"time"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/sources/domain"
)

// SeedFromDocuments sweeps stored documents and widens registry first/last
// seen windows, marking touched sources due for an immediate stats pass
func (s *Svc) SeedFromDocuments(ctx context.Context, r domain.SeedRange) error {
	since := r.Since
	until := r.Until
	if until.IsZero() {
		until = time.Now().UTC()
	}
	limit := r.Limit
	if limit == 0 {
		limit = s.cfg.DefaultSeedLimit
	}

	var touched int
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		n, err := s.binder.Bind(q).TouchFromDocuments(ctx, since, until, limit)
		if err == nil {
			touched = n
		}
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info().Int("sources", touched).Msg("sources: seed swept document windows")
	return nil
}
