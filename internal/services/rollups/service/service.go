// Package service provides the daily rollup implementation
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/logger"
	rodom "marginalia/internal/services/rollups/domain"
	"marginalia/internal/services/rollups/guardrails"
)

// Config controls concurrency and retention behavior
type Config struct {
	Workers int

	// DetectorVersion is stamped on daily slices for this run
	DetectorVersion int

	// RetentionMode is advisory for the repo: "full", "aggressive", "timebox:Nd"
	RetentionMode string

	// EnableLeases guards day processing with the rollup_days lease columns.
	// Disable only for single-process runs and tests
	EnableLeases bool
}

// Service wires TxRunner + Binder into the domain operations
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[rodom.StorageRepo]
	Cfg    Config

	// Lease(ctx, dayUTC, do) should claim the day lease and run do()
	Lease func(ctx context.Context, day time.Time, do func(context.Context) error) error
}

// New constructs the rollup service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[rodom.StorageRepo],
	cfg Config,
	lease func(context.Context, time.Time, func(context.Context) error) error,
) *Service {
	if db == nil {
		panic("rollups.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("rollups.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Cfg: cfg, Lease: lease}
}

// ApplyDay rebuilds the daily slice for exactly one day (idempotent).
// Finished days are rebuilt too; only a live lease turns the call away
func (s *Service) ApplyDay(ctx context.Context, day time.Time) error {
	day = day.UTC().Truncate(24 * time.Hour)
	l := logger.C(ctx).With().Str("mod", "rollups").Time("day", day).Logger()
	l.Info().Msg("rollups: apply-day start")

	return s.runUnderLease(ctx, day, func(ctx context.Context) error {
		if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).Start(ctx, day)
		}); err != nil {
			return err
		}
		return s.applyDayUnlocked(ctx, day)
	})
}

// applyClaimed processes a day the resume claim already transitioned to
// running, so Start is skipped to keep the attempt count honest
func (s *Service) applyClaimed(ctx context.Context, day time.Time) error {
	return s.runUnderLease(ctx, day, func(ctx context.Context) error {
		return s.applyDayUnlocked(ctx, day)
	})
}

// runUnderLease wraps run with the day lease when enabled.
// A held lease is a clean skip: whoever owns it will finish the day
func (s *Service) runUnderLease(ctx context.Context, day time.Time, run func(context.Context) error) error {
	if s.Lease == nil || !s.Cfg.EnableLeases {
		// Single-process / tests
		return run(ctx)
	}
	if err := s.Lease(ctx, day, run); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if errors.Is(err, guardrails.ErrLeaseHeld) {
			logger.C(ctx).Debug().Time("day", day).Msg("rollups: lease not acquired; clean skip")
			return nil
		}
		logger.C(ctx).Error().Time("day", day).Err(err).Msg("rollups: apply-day failed")
		return err
	}
	return nil
}

func (s *Service) applyDayUnlocked(ctx context.Context, day time.Time) (retErr error) {
	start := time.Now()
	var rowsRolled, delRaw, sparedRaw int
	var rollupMS, pruneMS int
	var errText string

	// Always record finish/clear lease, even on error
	defer func() {
		_ = s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).Finish(ctx, day, rodom.FinishInfo{
				Status:     map[bool]string{true: "error", false: "done"}[retErr != nil],
				DetVer:     s.Cfg.DetectorVersion,
				RowsRolled: rowsRolled,
				DeletedRaw: delRaw,
				SparedRaw:  sparedRaw,
				RollupMS:   rollupMS,
				PruneMS:    pruneMS,
				TotalMS:    int(time.Since(start).Milliseconds()),
				ErrText:    errText,
			})
		})
	}()

	// Rebuild the daily slice (idempotent per day+detver)
	{
		t0 := time.Now()
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			n, e := s.Binder.Bind(q).BuildDaily(ctx, day, s.Cfg.DetectorVersion)
			rowsRolled = n
			return e
		})
		rollupMS = int(time.Since(t0).Milliseconds())
		if err != nil {
			errText = err.Error()
			retErr = err
			return retErr // defer will handle Finish/lease clear
		}
	}

	// Prune per policy
	{
		t1 := time.Now()
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			d, sp, e := s.Binder.Bind(q).PruneRaw(ctx, day, s.Cfg.RetentionMode)
			delRaw, sparedRaw = d, sp
			return e
		})
		pruneMS = int(time.Since(t1).Milliseconds())
		if err != nil {
			errText = err.Error()
			retErr = err
			return retErr // defer will handle Finish/lease clear
		}
	}

	return nil
}

// RunRange queues and rebuilds every day in [start, end] inclusive.
// Seeding first makes an interrupted range resumable via RunResume
func (s *Service) RunRange(ctx context.Context, start, end time.Time) error {
	start = start.UTC().Truncate(24 * time.Hour)
	end = end.UTC().Truncate(24 * time.Hour)
	if end.Before(start) {
		return errors.New("end before start")
	}

	days := make([]time.Time, 0, int(end.Sub(start)/(24*time.Hour))+1)
	for cur := start; !cur.After(end); cur = cur.Add(24 * time.Hour) {
		days = append(days, cur)
	}
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		n, e := s.Binder.Bind(q).SeedDays(ctx, days)
		if e == nil {
			logger.C(ctx).Info().Int("days", n).Msg("rollups: range queued")
		}
		return e
	}); err != nil {
		return err
	}

	for _, cur := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ApplyDay(ctx, cur); err != nil {
			logger.C(ctx).Error().Time("day", cur).Err(err).Msg("rollups: ApplyDay failed")
		}
	}
	return nil
}

// RunResume drains queued days until none are due
func (s *Service) RunResume(ctx context.Context) error {
	w := s.Cfg.Workers
	if w <= 0 {
		w = 2
	}
	var fails int64
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for {
			if ctx.Err() != nil {
				return
			}
			var day time.Time
			var ok bool
			err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
				d, claimed, e := s.Binder.Bind(q).NextDayNeedingWork(ctx)
				day, ok = d, claimed
				return e
			})
			if err != nil {
				logger.C(ctx).Error().Err(err).Msg("rollups: NextDayNeedingWork failed")
				atomic.AddInt64(&fails, 1)
				return
			}
			if !ok {
				return // no more work
			}
			if e := s.applyClaimed(ctx, day); e != nil {
				atomic.AddInt64(&fails, 1)
			}
		}
	}

	wg.Add(w)
	for i := 0; i < w; i++ {
		go worker()
	}
	wg.Wait()

	if atomic.LoadInt64(&fails) > 0 {
		return errors.New("some days failed")
	}
	return nil
}
