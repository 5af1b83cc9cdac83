// Package service implements the insights API facade
package service

import (
	"context"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/api/insights/domain"
	srepo "marginalia/internal/services/api/insights/repo"
)

// Service is the concrete implementation of domain.ServicePort
type Service struct {
	DB   repokit.TxRunner
	Repo repokit.Binder[srepo.StorageRepo]
}

// New constructs an insights service
func New(db repokit.TxRunner, binder repokit.Binder[srepo.StorageRepo]) *Service {
	if db == nil {
		panic("insights.Service requires a non-nil TxRunner")
	}
	if binder == nil {
		panic("insights.Service requires a non-nil repo Binder")
	}
	return &Service{DB: db, Repo: binder}
}

// KPIs returns headline numbers (for the window; pass today for homepage)
func (s *Service) KPIs(ctx context.Context, in domain.KPIsInput) (domain.KPIsResp, error) {
	var out domain.KPIsResp
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var e error
		out, e = s.Repo.Bind(q).KPIs(ctx, in)
		return e
	})
	return out, err
}

// Timeseries returns bucketed annotation volume
func (s *Service) Timeseries(ctx context.Context, in domain.TimeseriesInput) (domain.TimeseriesResp, error) {
	var out domain.TimeseriesResp
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var e error
		out, e = s.Repo.Bind(q).Timeseries(ctx, in)
		return e
	})
	return out, err
}

// TopSources returns sources ranked by rolled-up volume
func (s *Service) TopSources(ctx context.Context, in domain.TopSourcesInput) (domain.TopSourcesResp, error) {
	var out domain.TopSourcesResp
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var e error
		out, e = s.Repo.Bind(q).TopSources(ctx, in)
		return e
	})
	return out, err
}

// KindMix returns per-kind totals for the window
func (s *Service) KindMix(ctx context.Context, in domain.KindMixInput) (domain.KindMixResp, error) {
	var out domain.KindMixResp
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var e error
		out, e = s.Repo.Bind(q).KindMix(ctx, in)
		return e
	})
	return out, err
}
