package service

import (
	"context"
	"time"

	"marginalia/internal/services/sources/domain"
)

// Run polls for due sources until the context ends.
// Claim failures stop the loop; per-source refresh failures are handled
// inside RefreshDue
func (s *Svc) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := s.RefreshDue(ctx, domain.RefreshParams{Limit: s.cfg.Batch}); err != nil {
				return err
			}
		}
	}
}
