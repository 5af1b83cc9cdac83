package service

import (
	"context"
	"fmt"
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/resolve"
	perr "marginalia/internal/platform/errors"
	docdom "marginalia/internal/services/documents/domain"
	dom "marginalia/internal/services/review/domain"
)

// handleJob settles a single review.
// It re-reads the annotation and its document, replays detection at the
// current detector version, and records the verdict: confirmed when the
// same kind and span come back, stale otherwise (flipping the annotation),
// orphaned when the annotation or document is gone. Transient errors
// requeue with backoff until attempts run out
func (s *Svc) handleJob(ctx context.Context, j dom.ReviewJob) error {
	ann, err := s.anns.ByID(ctx, j.AnnotationID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return s.repo.CompleteReview(ctx, j.ID, "orphaned", s.cfg.Detver)
		}
		return s.retry(ctx, j, fmt.Sprintf("annotation: %v", err))
	}

	doc, err := s.docs.ByID(ctx, ann.DocumentID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return s.repo.CompleteReview(ctx, j.ID, "orphaned", s.cfg.Detver)
		}
		return s.retry(ctx, j, fmt.Sprintf("document: %v", err))
	}

	if s.stillDetected(doc, ann.Kind, ann.SpanStart, ann.SpanEnd) {
		return s.repo.CompleteReview(ctx, j.ID, "confirmed", s.cfg.Detver)
	}

	// The current detector no longer produces this span; flip the annotation
	if err := s.mark.MarkStale(ctx, []string{ann.ID}); err != nil {
		return s.retry(ctx, j, fmt.Sprintf("mark_stale: %v", err))
	}
	return s.repo.CompleteReview(ctx, j.ID, "stale", s.cfg.Detver)
}

// stillDetected replays detection over the stored document and looks for an
// entry with the same kind and byte span as the annotation under review
func (s *Svc) stillDetected(d docdom.Document, kind string, start, end int) bool {
	text := resolve.Text{Body: d.Body}
	for _, m := range d.Markers {
		text.Markers = append(text.Markers, resolve.Marker{
			Span:    checking.Span{Start: m.Start, End: m.End},
			Payload: m.Payload,
		})
	}

	for _, e := range s.res.Resolve(text, s.cfg.Kinds).Entries() {
		if e.Span.Start == start && e.Span.End == end && e.Checking.Kind().String() == kind {
			return true
		}
	}
	return false
}

// retry requeues with backoff, or settles the job as error once the
// attempt budget is spent
func (s *Svc) retry(ctx context.Context, j dom.ReviewJob, errText string) error {
	if j.Attempts+1 >= s.cfg.MaxAttempts {
		return s.repo.FailReview(ctx, j.ID, errText)
	}
	return s.repo.RequeueReview(ctx, j.ID, errText, nextAfter(j.Attempts, s.cfg.RetryBase))
}

func nextAfter(attempt int, base time.Duration) time.Time {
	// simple exponential w/ cap ~30s
	d := base << uint(attempt)
	if d <= 0 || d > 30*time.Second {
		d = 30 * time.Second
	}
	return time.Now().UTC().Add(d)
}
