package store

import (
	"context"
	"errors"
	"time"

	"marginalia/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryTrace times statements and forwards them to the tracer from pg.Open.
// With a nil tracer observe does nothing, so untraced pools pay one branch
type queryTrace struct {
	tracer pg.QueryTracer
	slowUS int64
}

func (q queryTrace) observe(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if q.tracer == nil {
		return
	}
	elapsed := time.Since(start).Microseconds()
	q.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsed,
		Err:       err,
		Slow:      q.slowUS >= 0 && elapsed >= q.slowUS,
	})
}

// sqlPool adapts pg.PG to RowQuerier and TxRunner
type sqlPool struct {
	p *pg.PG
	queryTrace
}

func newSQLPool(p *pg.PG) *sqlPool {
	return &sqlPool{
		p:          p,
		queryTrace: queryTrace{tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000},
	}
}

func (s *sqlPool) Ping(ctx context.Context) error {
	if s == nil {
		return errors.New("pg: nil pool")
	}
	var one int
	return s.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (s *sqlPool) Close() error { s.p.Close(); return nil }

func (s *sqlPool) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := s.p.Pool.Exec(ctx, sql, args...)
	s.observe(ctx, sql, args, start, err)
	return cmdTag{ct}, err
}

func (s *sqlPool) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := s.p.Pool.Query(ctx, sql, args...)
	// timed to first row; scan time stays with the caller
	s.observe(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rowSet{r: rs}, nil
}

func (s *sqlPool) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := s.p.Pool.QueryRow(ctx, sql, args...)
	// pgx runs the statement inside Scan, so the event fires there
	return scanRow{r: r, done: func(scanErr error) { s.observe(ctx, sql, args, start, scanErr) }}
}

// Tx runs fn inside a transaction. Any error from fn rolls the whole
// transaction back; statements issued through q trace like pool statements
func (s *sqlPool) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := s.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txSession{tx: tx, queryTrace: s.queryTrace}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// txSession satisfies RowQuerier against a live pgx.Tx
type txSession struct {
	tx pgx.Tx
	queryTrace
}

func (t txSession) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.tx.Exec(ctx, sql, args...)
	t.observe(ctx, sql, args, start, err)
	return cmdTag{ct}, err
}

func (t txSession) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.tx.Query(ctx, sql, args...)
	t.observe(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rowSet{r: rs}, nil
}

func (t txSession) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.tx.QueryRow(ctx, sql, args...)
	return scanRow{r: r, done: func(scanErr error) { t.observe(ctx, sql, args, start, scanErr) }}
}

// thin wrappers narrowing pgx types to the store interfaces

type scanRow struct {
	r    pgx.Row
	done func(error)
}

func (x scanRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.done != nil {
		x.done(err)
	}
	return err
}

type rowSet struct{ r pgx.Rows }

func (x rowSet) Next() bool            { return x.r.Next() }
func (x rowSet) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rowSet) Err() error            { return x.r.Err() }
func (x rowSet) Close()                { x.r.Close() }

func (x rowSet) Columns() []string {
	fds := x.r.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return cols
}

type cmdTag struct{ t pgconn.CommandTag }

func (c cmdTag) String() string      { return c.t.String() }
func (c cmdTag) RowsAffected() int64 { return c.t.RowsAffected() }
