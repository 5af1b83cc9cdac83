package store

import (
	"context"
	"fmt"
	"time"

	chx "marginalia/internal/platform/store/ch"
	"marginalia/internal/platform/store/pg"
)

// openPG dials postgres and waits for it to answer before handing the pool
// to the sql adapter. Containers often accept TCP before they accept
// queries, so the first pings retry with backoff instead of failing the boot
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	// ping the raw pool so probes stay out of the SQL trace
	var lastErr error
	backoff := 150 * time.Millisecond
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(pingCtx)
		cancel()

		if lastErr == nil {
			return newSQLPool(p), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff = min(backoff*2, 2*time.Second)
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:  cfg.CH.URL,
		Role: cfg.CH.ClientRole,
		Tag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
