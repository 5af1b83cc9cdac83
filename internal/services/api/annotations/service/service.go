// Package service contains annotations API workflows
package service

import (
	"context"
	"time"

	perr "marginalia/internal/platform/errors"
	str "marginalia/internal/platform/strings"
	anndom "marginalia/internal/services/annotations/domain"
	"marginalia/internal/services/api/annotations/domain"
)

// Service defines the service contract for annotations
type Service interface{ domain.ServicePort }

// Svc implements Service over the annotations query port
type Svc struct {
	q anndom.QueryPort
}

// New creates a new annotations API service
func New(q anndom.QueryPort) *Svc {
	if q == nil {
		panic("annotations.Service requires a non nil QueryPort")
	}
	return &Svc{q: q}
}

// Samples returns one page of annotations joined with document context
func (s *Svc) Samples(ctx context.Context, in domain.SamplesInput) (domain.SamplesOutput, error) {
	w, err := window(in.Start, in.End)
	if err != nil {
		return domain.SamplesOutput{}, err
	}

	var after anndom.AfterKey
	if in.After != nil {
		ts, err := time.Parse(time.RFC3339, in.After.CreatedAt)
		if err != nil {
			return domain.SamplesOutput{}, perr.InvalidArgf("after.created_at: %v", err)
		}
		after = anndom.AfterKey{CreatedAt: ts, DocumentID: in.After.DocumentID}
	}

	rows, next, err := s.q.ListSamples(ctx, w, anndom.Filters{
		SourceID: in.SourceID,
		Kind:     in.Kind,
		LangHint: in.LangHint,
		Status:   in.Status,
		Detver:   in.Detver,
	}, after, in.Limit)
	if err != nil {
		return domain.SamplesOutput{}, err
	}

	out := domain.SamplesOutput{Rows: make([]domain.Sample, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, domain.Sample{
			DocumentID: r.DocumentID,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
			SourceID:   r.SourceID,
			LangHint:   str.Deref(r.LangHint),
			Kind:       r.Kind,
			SpanStart:  r.SpanStart,
			SpanEnd:    r.SpanEnd,
			Text:       r.Text,
			Payload:    r.Payload,
			Detver:     r.Detver,
			Status:     r.Status,
		})
	}
	if next.DocumentID != "" {
		out.Next = &domain.AfterKey{
			CreatedAt:  next.CreatedAt.UTC().Format(time.RFC3339),
			DocumentID: next.DocumentID,
		}
	}
	return out, nil
}

// ByDocument returns every annotation pinned to one document
func (s *Svc) ByDocument(ctx context.Context, in domain.ByDocumentInput) ([]domain.Annotation, error) {
	rows, err := s.q.ByDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Annotation, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.Annotation{
			ID:         a.ID,
			DocumentID: a.DocumentID,
			SourceID:   a.SourceID,
			Kind:       a.Kind,
			SpanStart:  a.SpanStart,
			SpanEnd:    a.SpanEnd,
			Payload:    a.Payload,
			Detver:     a.Detver,
			Status:     a.Status,
			LangHint:   str.Deref(a.LangHint),
			CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// window widens an inclusive date pair into the half-open range storage uses
func window(start, end string) (anndom.Window, error) {
	since, err := time.Parse("2006-01-02", start)
	if err != nil {
		return anndom.Window{}, perr.InvalidArgf("start: %v", err)
	}
	until, err := time.Parse("2006-01-02", end)
	if err != nil {
		return anndom.Window{}, perr.InvalidArgf("end: %v", err)
	}
	if until.Before(since) {
		return anndom.Window{}, perr.InvalidArgf("end before start")
	}
	return anndom.Window{Since: since.UTC(), Until: until.UTC().Add(24 * time.Hour)}, nil
}
