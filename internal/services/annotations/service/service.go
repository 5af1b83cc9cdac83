// Package service provides the annotations service implementation
package service

import (
	"context"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/logger"
	dom "marginalia/internal/services/annotations/domain"
	"marginalia/internal/services/annotations/repo"
)

// Config for the annotations service
type Config struct {
	HardLimit int
}

// Service implements domain.WriterPort and domain.QueryPort.
// Postgres is the system of record; the ClickHouse sink is best effort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Sink   *repo.Sink
	Cfg    Config
}

// New constructs a new annotations service; sink may be nil
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], sink *repo.Sink, cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 100
	}
	return &Service{DB: db, Binder: b, Sink: sink, Cfg: cfg}
}

// WriteBatch implements domain.WriterPort
func (s *Service) WriteBatch(ctx context.Context, xs []dom.Annotation) error {
	if len(xs) == 0 {
		return nil
	}
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).WriteBatch(ctx, xs)
	})
	if err != nil {
		return err
	}
	if err := s.Sink.Append(ctx, xs); err != nil {
		// analytics stream lags but the write stands
		logger.Named("annotations").Warn().Err(err).Int("rows", len(xs)).Msg("ch sink append failed")
	}
	return nil
}

// MarkStale implements domain.WriterPort
func (s *Service) MarkStale(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).MarkStale(ctx, ids)
	})
}

// ListSamples implements domain.QueryPort
func (s *Service) ListSamples(
	ctx context.Context,
	w dom.Window,
	f dom.Filters,
	after dom.AfterKey,
	limit int,
) ([]dom.Sample, dom.AfterKey, error) {
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	var rows []dom.Sample
	var next dom.AfterKey
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, next, err = s.Binder.Bind(q).ListSamples(ctx, w, f, after, limit)
		return err
	})
	if err != nil {
		return nil, dom.AfterKey{}, err
	}
	return rows, next, nil
}

// ByID implements domain.QueryPort
func (s *Service) ByID(ctx context.Context, id string) (dom.Annotation, error) {
	var a dom.Annotation
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		a, err = s.Binder.Bind(q).ByID(ctx, id)
		return err
	})
	return a, err
}

// ByDocument implements domain.QueryPort
func (s *Service) ByDocument(ctx context.Context, documentID string) ([]dom.Annotation, error) {
	var rows []dom.Annotation
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, err = s.Binder.Bind(q).ByDocument(ctx, documentID)
		return err
	})
	return rows, err
}
