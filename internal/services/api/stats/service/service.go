// Package service contains stats workflows
package service

import (
	"context"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/api/stats/domain"
	"marginalia/internal/services/api/stats/repo"
)

// Service defines the stats service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stats service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
}

// New constructs a stats service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("stats.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("stats.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// ByKind returns annotation counts by kind and day
func (s *Svc) ByKind(ctx context.Context, in domain.ByKindInput) ([]domain.ByKindRow, error) {
	rows, err := s.Repo.ByKind(ctx, in.Range.Start, in.Range.End, in.SourceID, in.Status)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ByKindRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ByKindRow{
			Day:         r.Day,
			Kind:        r.Kind,
			Annotations: r.Annotations,
		})
	}
	return out, nil
}

// BySource returns top sources in a given time window
func (s *Svc) BySource(ctx context.Context, in domain.BySourceInput) ([]domain.BySourceRow, error) {
	rows, err := s.Repo.BySource(ctx, in.Range.Start, in.Range.End, in.Kind)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BySourceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.BySourceRow{SourceID: r.SourceID, Source: r.Source, Annotations: r.Annotations})
	}
	return out, nil
}

// Activity returns per-day document and annotation counts
func (s *Svc) Activity(ctx context.Context, in domain.ActivityInput) ([]domain.ActivityRow, error) {
	rows, err := s.Repo.Activity(ctx, in.Range.Start, in.Range.End, in.SourceID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ActivityRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ActivityRow{
			Day:         r.Day,
			Documents:   r.Documents,
			Annotated:   r.Annotated,
			Annotations: r.Annotations,
		})
	}
	return out, nil
}
