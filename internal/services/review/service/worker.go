package service

import (
	"context"
	"time"

	"marginalia/internal/platform/logger"
)

// Run starts the worker loop to settle review jobs
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("review-worker")
	sem := make(chan struct{}, max(1, s.cfg.Concurrency))
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// lease a small batch; process concurrently with a simple semaphore
			jobs, err := s.repo.LeaseReviews(ctx, "review", s.cfg.QueueTakeBatch, s.cfg.LeaseFor)
			if err != nil {
				log.Error().Err(err).Msg("lease reviews failed")
				continue
			}
			for i := range jobs {
				sem <- struct{}{}
				j := jobs[i]
				go func() {
					defer func() { <-sem }()
					if err := s.handleJob(ctx, j); err != nil {
						log.Warn().Err(err).Str("review_id", j.ID).Msg("review failed")
					}
				}()
			}
		}
	}
}
