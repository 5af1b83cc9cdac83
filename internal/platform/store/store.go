// Package store opens the storage backends and narrows them to small seams.
// Repos never see pgx or the clickhouse driver, only the interfaces here
package store

import (
	"context"
	"errors"
	"fmt"

	"marginalia/internal/platform/logger"
)

// Store holds whichever backends the binary enabled.
// A zero Store is usable; disabled backends stay nil
type Store struct {
	// Log feeds the subclients, zero means a silent zerolog logger
	Log logger.Logger

	// PG is the relational seam, nil when postgres is disabled
	PG TxRunner

	// CH is the columnar seam, nil when clickhouse is disabled
	CH Clickhouse
}

// Option mutates the Store while Open assembles it
type Option func(*Store) error

// WithLogger routes backend logging, including the SQL trace, through log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Row scans a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the statement surface repos run against, inside or
// outside a transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner adds transaction scoping on top of RowQuerier
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse covers the columnar needs: statements, reads, scalar
// aggregates, and batched inserts
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	ScalarUInt64(ctx context.Context, sql string, args ...any) (uint64, error)
	InsertBatch(ctx context.Context, table string, cols []string, rows [][]any) error
	Ping(ctx context.Context) error
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends cfg enables and returns the assembled Store.
// The first backend that fails to open aborts the whole call
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// normalize a zero logger so subclients never nil-check
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		pgc, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgc
	}

	if cfg.CH.Enabled {
		chc, err := openCH(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.CH = chc
	}

	return s, nil
}

// Guard pings every configured backend and joins the failures, so a
// readiness probe can report all cold seams at once
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.PG != nil {
		if p, ok := any(s.PG).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("pg: %w", err))
			}
		}
	}
	if s.CH != nil {
		if err := s.CH.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("ch: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Close releases every open backend and keeps going past failures
func (s *Store) Close(ctx context.Context) error {
	var errs []error

	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c, ok := s.PG.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
