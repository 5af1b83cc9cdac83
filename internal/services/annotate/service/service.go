// Package service implements the annotate service
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/resolve"
	perr "marginalia/internal/platform/errors"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
)

// Config for the annotate service
type Config struct {
	Detver        int
	Workers       int
	PageSize      int
	MaxRangeHours int // 0 = unlimited
	InsertChunk   int // per-write chunk size; 0 -> default
	RetryBase     time.Duration
	DryRun        bool
	Kinds         []checking.Checking
}

// Service implements domain.RunnerPort
type Service struct {
	Docs  docdom.ReaderPort
	Stamp docdom.WriterPort
	Anns  anndom.WriterPort
	Res   *resolve.Resolver
	Cfg   Config
}

// New constructs a new annotate service
func New(
	docs docdom.ReaderPort,
	stamp docdom.WriterPort,
	anns anndom.WriterPort,
	res *resolve.Resolver,
	cfg Config,
) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.InsertChunk <= 0 {
		cfg.InsertChunk = 1000
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 250 * time.Millisecond
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = checking.DefaultKinds()
	}
	return &Service{Docs: docs, Stamp: stamp, Anns: anns, Res: res, Cfg: cfg}
}

// RunRange annotates documents created in the given time range
func (s *Service) RunRange(ctx context.Context, start, end time.Time) error {
	start = start.Truncate(time.Hour).UTC()
	end = end.Truncate(time.Hour).UTC()
	if end.Before(start) {
		return errors.New("end before start")
	}
	if s.Cfg.MaxRangeHours > 0 && int(end.Sub(start).Hours()) > s.Cfg.MaxRangeHours {
		return errors.New("range exceeds MaxRangeHours")
	}

	after := docdom.AfterKey{}
	for {
		rows, next, err := s.Docs.List(ctx, docdom.ListInput{
			Since: start, Until: end,
			After: after, Limit: s.Cfg.PageSize,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := s.processPage(ctx, rows); err != nil {
			return err
		}
		after = next
	}
}

// RunResume drains documents still pending at the configured detver
func (s *Service) RunResume(ctx context.Context) error {
	after := docdom.AfterKey{}
	for {
		rows, next, err := s.Docs.Pending(ctx, docdom.PendingInput{
			Detver: s.Cfg.Detver,
			After:  after,
			Limit:  s.Cfg.PageSize,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := s.processPage(ctx, rows); err != nil {
			return err
		}
		after = next
	}
}

// processPage resolves one page of documents in parallel and persists the
// resulting annotations, then stamps the documents
func (s *Service) processPage(ctx context.Context, rows []docdom.Document) error {
	type chunk struct{ xs []anndom.Annotation }
	out := make([]chunk, len(rows))

	sem := make(chan struct{}, s.Cfg.Workers)
	wg := sync.WaitGroup{}

	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem; wg.Done() }()
			out[i] = chunk{xs: s.annotate(rows[i])}
		}(i)
	}
	wg.Wait()

	if s.Cfg.DryRun {
		return nil
	}

	flat := make([]anndom.Annotation, 0, 256)
	for i := range out {
		flat = append(flat, out[i].xs...)
	}
	for i := 0; i < len(flat); i += s.Cfg.InsertChunk {
		end := min(i+s.Cfg.InsertChunk, len(flat))
		if err := s.writeRobust(ctx, flat[i:end]); err != nil {
			return err
		}
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	return s.Stamp.MarkAnnotated(ctx, ids, s.Cfg.Detver)
}

// annotate resolves one document into annotation rows
func (s *Service) annotate(d docdom.Document) []anndom.Annotation {
	text := resolve.Text{Body: d.Body}
	for _, m := range d.Markers {
		text.Markers = append(text.Markers, resolve.Marker{
			Span:    checking.Span{Start: m.Start, End: m.End},
			Payload: m.Payload,
		})
	}

	entries := s.Res.Resolve(text, s.Cfg.Kinds).Entries()
	out := make([]anndom.Annotation, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(anndom.FromResult(e.Result))
		if err != nil {
			continue
		}
		out = append(out, anndom.Annotation{
			DocumentID: d.ID,
			SourceID:   d.SourceID,
			Kind:       e.Checking.Kind().String(),
			SpanStart:  e.Span.Start,
			SpanEnd:    e.Span.End,
			Payload:    b,
			Detver:     s.Cfg.Detver,
			Status:     "active",
			LangHint:   d.LangHint,
			CreatedAt:  d.CreatedAt,
		})
	}
	return out
}

// writeRobust writes a slice with retries; if it still fails with a
// retryable error, it bisects the batch and attempts each half.
// Guarantees eventual progress (down to size 1) for retryable failures
func (s *Service) writeRobust(ctx context.Context, batch []anndom.Annotation) error {
	if len(batch) == 0 {
		return nil
	}

	const maxAttempts = 4

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.Anns.WriteBatch(ctx, batch)
		if err == nil {
			return nil
		}
		last = err
		if !perr.Retryable(err) || attempt == maxAttempts {
			break
		}
		// backoff with jitter, capped at 10s
		d := min(s.Cfg.RetryBase<<(attempt-1), 10*time.Second)
		sleep := d/2 + time.Duration(rand.Int63n(int64(d/2)))
		if se := sleepCtx(ctx, sleep); se != nil {
			return last
		}
	}

	if !perr.Retryable(last) {
		return last
	}
	if len(batch) == 1 {
		return last
	}
	mid := len(batch) / 2
	if err := s.writeRobust(ctx, batch[:mid]); err != nil {
		return err
	}
	return s.writeRobust(ctx, batch[mid:])
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
