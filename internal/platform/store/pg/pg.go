// Package pg owns the pgxpool handle plus the optional SQL trace hook.
// The store package wraps it; nothing else should import it directly
package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries the connection URL and the trace threshold
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG bundles the pool with the tracer the adapter emits through
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// seam so tests can fail pool construction without a server
var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL, applies MaxConns, lets tune adjust the pool config
// last, and connects. tracer and tune may both be nil.
// An empty URL errors here rather than as a confusing dial failure later
func Open(ctx context.Context, cfg Config, tracer QueryTracer, tune func(*pgxpool.Config)) (*PG, error) {
	if cfg.URL == "" {
		return nil, errors.New("pg: empty connection url")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if tune != nil {
		tune(poolCfg)
	}

	pool, err := newPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	p := &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}
	return p, nil
}

// Close releases the pool, tolerating nil receivers and double calls
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
