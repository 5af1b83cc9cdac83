// Package service provides the corpus import service implementation
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	"marginalia/internal/platform/logger"
	docdom "marginalia/internal/services/documents/domain"
	"marginalia/internal/services/importer/domain"
	"marginalia/internal/services/importer/guardrails"
	srcdom "marginalia/internal/services/sources/domain"
)

// Config holds configuration options for the import service
type Config struct {
	// Concurrency & pacing
	Workers      int           // number of parallel archives; <=0 -> 1
	DelayPerFile time.Duration // optional sleep after each processed archive (per worker)

	// Archive-level retry
	MaxRetries int           // attempts per archive; <=0 -> 1
	RetryBase  time.Duration // base backoff for archive retries; <=0 -> 500ms

	// Timeouts applied via guardrails
	FetchTimeout time.Duration
	ReadTimeout  time.Duration

	// Run guard
	MaxFiles int // max archives per RunFiles call; 0 = unlimited

	// Insert tuning: documents per write chunk; 0 -> default
	InsertChunk int

	// SourcesConcurrency limits concurrent EnsureSources calls; <=0 -> 2
	SourcesConcurrency int
}

// Service implements the import service
type Service struct {
	DB      repokit.TxRunner
	Binder  repokit.Binder[domain.StorageRepo]
	Fetch   domain.Fetcher
	Reader  domain.ReaderFactory
	Extract domain.Extractor
	Cfg     Config

	Docs    docdom.WriterPort
	Sources srcdom.RegistryPort

	sourcesSem chan struct{}
}

// New constructs the import service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	f domain.Fetcher,
	rf domain.ReaderFactory,
	ex domain.Extractor,
	docs docdom.WriterPort,
	sources srcdom.RegistryPort,
	cfg Config,
) *Service {
	sc := cfg.SourcesConcurrency
	if sc <= 0 {
		sc = 2
	}

	if db == nil {
		panic("importer.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("importer.Service requires a non nil Repo binder")
	}
	if docs == nil {
		panic("importer.Service requires a documents writer")
	}
	if sources == nil {
		panic("importer.Service requires a sources registry")
	}
	return &Service{
		DB: db, Binder: binder,
		Fetch: f, Reader: rf, Extract: ex,
		Docs: docs, Sources: sources,
		Cfg:        cfg,
		sourcesSem: make(chan struct{}, sc),
	}
}

// checkNames validates archive names before they reach fetchers or SQL
func checkNames(names []string) error {
	if len(names) == 0 {
		return errors.New("no archives named")
	}
	for _, n := range names {
		if !(domain.FileRef{Name: n}).Valid() {
			return fmt.Errorf("bad archive name %q", n)
		}
	}
	return nil
}

// PlanFiles seeds import_jobs without processing
func (s *Service) PlanFiles(ctx context.Context, names []string) error {
	if err := checkNames(names); err != nil {
		return err
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		applyTxTuning(ctx, q)
		_, err := s.Binder.Bind(q).PreseedFiles(ctx, names)
		return err
	})
}

// RunFiles implements domain.RunnerPort
func (s *Service) RunFiles(ctx context.Context, names []string) error {
	if err := checkNames(names); err != nil {
		return err
	}
	if s.Cfg.MaxFiles > 0 && len(names) > s.Cfg.MaxFiles {
		return errors.New("too many archives for one run")
	}

	// Pre-seed all jobs up front
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		applyTxTuning(ctx, q)
		_, err := s.Binder.Bind(q).PreseedFiles(ctx, names)
		return err
	}); err != nil {
		return err
	}

	return s.drain(ctx, names)
}

// RunResume drains any pending/error jobs globally, ignoring names
func (s *Service) RunResume(ctx context.Context) error {
	return s.drain(ctx, nil)
}

// drain starts workers that repeatedly claim the next job and process it.
// A nil names filter claims from the whole table
func (s *Service) drain(ctx context.Context, names []string) error {
	w := max(s.Cfg.Workers, 1)
	var fails int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, w)

	worker := func() {
		defer func() { <-sem; wg.Done() }()
		for {
			// Claim next archive; break when none left
			name, ok, err := s.claimNext(ctx, names)
			if err != nil {
				logger.C(ctx).Error().Err(err).Msg("importer: NextFileToProcess failed")
				atomic.AddInt64(&fails, 1)
				// Small pause on coordinator error (avoid hot loop)
				_ = sleepCtx(ctx, 500*time.Millisecond)
				continue
			}
			if !ok {
				return // no more work
			}
			if err := s.runFileWithRetry(ctx, domain.FileRef{Name: name}); err != nil {
				logger.C(ctx).Error().Str("archive", name).Err(err).Msg("importer: runFile failed")
				atomic.AddInt64(&fails, 1)
			}
			// Optional pacing per worker
			if s.Cfg.DelayPerFile > 0 {
				_ = sleepCtx(ctx, s.Cfg.DelayPerFile)
			}
		}
	}

	// Launch the pool
	for range w {
		select {
		case <-ctx.Done():
			wg.Wait()
			if fails > 0 {
				return ctx.Err()
			}
			return nil
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go worker()
	}
	wg.Wait()

	if fails > 0 {
		return errors.New("some archives failed")
	}
	return nil
}

func (s *Service) claimNext(ctx context.Context, names []string) (string, bool, error) {
	var name string
	var ok bool
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		applyTxTuning(ctx, q)
		n, claimed, e := s.Binder.Bind(q).NextFileToProcess(ctx, names)
		if e != nil {
			return e
		}
		name = n
		ok = claimed
		return nil
	})
	return name, ok, err
}

func (s *Service) runFileWithRetry(ctx context.Context, ref domain.FileRef) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for i := range attempts {
		err := s.runFile(ctx, ref)
		if err == nil {
			return nil
		}
		last = err

		// Stop early on non-retryable errors
		if !perr.Retryable(err) && perr.CodeOf(err) != perr.ErrorCodeUnavailable {
			return last
		}

		// Last attempt -> return
		if i == attempts-1 {
			break
		}

		// Exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)))
		if se := sleepCtx(ctx, j); se != nil {
			return se
		}
	}
	return last
}

func (s *Service) runFile(ctx context.Context, ref domain.FileRef) (retErr error) {
	// Build timeouts bundle (File/DB optional -> zero)
	tos := guardrails.Timeouts{
		File:  0,
		Fetch: s.Cfg.FetchTimeout,
		Read:  s.Cfg.ReadTimeout,
		DB:    0,
	}

	// Archive-scoped context
	fCtx, fCancel := guardrails.WithFile(ctx, tos)
	defer fCancel()

	startWall := time.Now()
	var fetchMS, readMS, dbMS, elapsedMS int
	var cacheHit bool
	var records, docs, skipped, inserted, deduped int
	var bytesUncompressed int64
	var errText string

	// Start (best-effort, DB-bounded)
	{
		dbCtx, dbCancel := guardrails.ForDB(fCtx, tos)
		_ = s.DB.Tx(dbCtx, func(q repokit.Queryer) error {
			applyTxTuning(ctx, q)
			return s.Binder.Bind(q).StartFile(dbCtx, ref.Name)
		})
		dbCancel()
	}

	// Ensure Finish even on error
	defer func() {
		elapsedMS = int(time.Since(startWall).Milliseconds())
		if retErr != nil && errText == "" {
			errText = retErr.Error()
		}
		dbCtx, dbCancel := guardrails.ForDB(fCtx, tos)
		_ = s.DB.Tx(dbCtx, func(q repokit.Queryer) error {
			applyTxTuning(ctx, q)
			return s.Binder.Bind(q).FinishFile(dbCtx, ref.Name, domain.FileFinish{
				Status:            map[bool]string{true: "error", false: "ok"}[retErr != nil],
				CacheHit:          cacheHit,
				BytesUncompressed: bytesUncompressed,
				Records:           records,
				Documents:         docs,
				Skipped:           skipped,
				Inserted:          inserted,
				Deduped:           deduped,
				FetchMS:           fetchMS,
				ReadMS:            readMS,
				DBMS:              dbMS,
				ElapsedMS:         elapsedMS,
				ErrText:           errText,
			})
		})
		dbCancel()
	}()

	// Fetch (timeoutable)
	t0 := time.Now()
	fetchCtx, fetchCancel := guardrails.ForFetch(fCtx, tos)
	rc, err := s.Fetch.Fetch(fetchCtx, ref)
	fetchCancel()
	fetchMS = int(time.Since(t0).Milliseconds())
	if err != nil {
		retErr = err
		return
	}

	// Best-effort cache-hit detection for metrics only
	if _, ok := any(rc).(interface{ Name() string }); ok {
		cacheHit = true
	}

	rd, err := s.Reader.New(rc)
	if err != nil {
		_ = rc.Close()
		retErr = err
		return
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()

	// Read + extract (timeoutable)
	t1 := time.Now()
	var all []domain.Item
	readCtx, readCancel := guardrails.ForRead(fCtx, tos)
	rerr := func() error {
		for {
			if err := readCtx.Err(); err != nil {
				return err
			}
			rec, e := rd.Next()
			if e == io.EOF {
				break
			}
			if e != nil {
				return e
			}
			records++
			item, ok := s.Extract.FromRecord(rec)
			if !ok {
				skipped++
				continue
			}
			all = append(all, item)
		}
		return nil
	}()
	readCancel()
	readMS = int(time.Since(t1).Milliseconds())
	if rerr != nil {
		retErr = rerr
		return
	}
	docs = len(all)

	if statser, ok := any(rd).(interface{ Stats() (int, int64) }); ok {
		_, bytesUncompressed = statser.Stats()
	}

	// Chunked writes with robust retry
	t2 := time.Now()
	chunk := s.Cfg.InsertChunk
	if chunk <= 0 {
		chunk = 1000 // production default
	}
	for i := 0; i < len(all); i += chunk {
		end := min(i+chunk, len(all))
		ins, dd, err := s.writeChunkRobust(fCtx, all[i:end])
		inserted += ins
		deduped += dd
		if err != nil {
			retErr = err
			dbMS += int(time.Since(t2).Milliseconds())
			return
		}
	}
	dbMS += int(time.Since(t2).Milliseconds())

	return nil
}

// writeChunkRobust writes one chunk with retries. Document writes are
// individually idempotent on (source_id, external_key), so a retried chunk
// converges instead of duplicating; rows inserted before a failed attempt
// count as deduped on the retry
func (s *Service) writeChunkRobust(ctx context.Context, chunk []domain.Item) (int, int, error) {
	if len(chunk) == 0 {
		return 0, 0, nil
	}

	const maxAttempts = 4
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}

	tryOnce := func(c context.Context, xs []domain.Item) (int, int, error) {
		// Mint source ids for this chunk (throttled)
		names := make([]string, 0, len(xs))
		seen := map[string]struct{}{}
		for _, it := range xs {
			if _, ok := seen[it.Source]; ok {
				continue
			}
			seen[it.Source] = struct{}{}
			names = append(names, it.Source)
		}

		s.sourcesSem <- struct{}{}
		ids, upErr := s.Sources.EnsureSources(c, names)
		<-s.sourcesSem
		if upErr != nil {
			return 0, 0, upErr
		}

		var ins, dd int
		for _, it := range xs {
			id, ok := ids[it.Source]
			if !ok {
				// blank after trim; extract should have filtered this
				continue
			}
			in := it.In
			in.SourceID = id
			_, inserted, err := s.Docs.Write(c, in)
			if err != nil {
				return ins, dd, err
			}
			if inserted {
				ins++
			} else {
				dd++
			}
		}
		return ins, dd, nil
	}

	// Fixed retries on the whole chunk
	var last error
	var totIns, totDd int
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ins, dd, err := tryOnce(ctx, chunk)
		totIns += ins
		totDd += dd
		if err == nil {
			return totIns, totDd, nil
		}
		last = err
		if !perr.Retryable(err) || attempt == maxAttempts {
			break
		}
		// backoff with jitter, capped at 10s
		d := min(base<<(attempt-1), 10*time.Second)
		sleep := d/2 + time.Duration(rand.Int63n(int64(d/2)))
		if se := sleepCtx(ctx, sleep); se != nil {
			return totIns, totDd, err
		}
	}
	return totIns, totDd, last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SET LOCAL only lives for the duration of the current transaction
func applyTxTuning(ctx context.Context, q repokit.Queryer) {
	_, _ = q.Exec(ctx, "SET LOCAL statement_timeout = 0")
}
