package store

import (
	"context"
	"errors"

	"marginalia/internal/platform/store/ch"
)

// newCHAdapter narrows *ch.CH to the Clickhouse seam
func newCHAdapter(c *ch.CH) Clickhouse {
	return &clickhouseAdapter{c: c}
}

type clickhouseAdapter struct {
	c *ch.CH
}

var _ Clickhouse = (*clickhouseAdapter)(nil)

// Ping reports connectivity; probes reach it through store.Pinger
func (a *clickhouseAdapter) Ping(ctx context.Context) error {
	if a == nil || a.c == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.c.Ping(ctx)
}

func (a *clickhouseAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	return a.c.Exec(ctx, sql, args...)
}

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rs: rs}, nil
}

func (a *clickhouseAdapter) ScalarUInt64(ctx context.Context, sql string, args ...any) (uint64, error) {
	return a.c.ScalarUInt64(ctx, sql, args...)
}

func (a *clickhouseAdapter) InsertBatch(ctx context.Context, table string, cols []string, rows [][]any) error {
	return a.c.InsertBatch(ctx, table, cols, rows)
}

func (a *clickhouseAdapter) Close() error { return a.c.Close() }

// rowsAdapter lets callers range ClickHouse results through store.Rows
type rowsAdapter struct {
	rs ch.Rows
}

func (r *rowsAdapter) Next() bool             { return r.rs.Next() }
func (r *rowsAdapter) Scan(dest ...any) error { return r.rs.Scan(dest...) }
func (r *rowsAdapter) Err() error             { return r.rs.Err() }
func (r *rowsAdapter) Close()                 { _ = r.rs.Close() }
func (r *rowsAdapter) Columns() []string      { return r.rs.Columns() }
