package store

import (
	"context"
	"testing"
	"time"
)

func fastFailPGURL() string {
	// user/pass/db don't matter; 127.0.0.1:1 is a closed port on all systems
	return "postgres://u:p@127.0.0.1:1/db?sslmode=disable"
}

func TestOpenPG_ParentAlreadyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{PG: PGConfig{URL: fastFailPGURL(), MaxConns: 2}}
	s := &Store{}

	start := time.Now()
	txr, err := openPG(ctx, cfg, s)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error due to canceled context, got nil (txr=%T)", txr)
	}
	if txr != nil {
		t.Fatalf("expected nil TxRunner on canceled context, got %T", txr)
	}
	// should return quickly (no DNS, immediate ECONNREFUSED)
	if elapsed > time.Second {
		t.Fatalf("expected quick failure, got %v", elapsed)
	}
}

func TestOpenPG_RetriesHonorConfig(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := Config{PG: PGConfig{
		URL:            fastFailPGURL(),
		MaxConns:       1,
		ConnectRetries: 2,
		PingTimeout:    200 * time.Millisecond,
	}}
	s := &Store{}

	start := time.Now()
	txr, err := openPG(ctx, cfg, s)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error against closed port, got nil (txr=%T)", txr)
	}
	// two attempts with 150ms/300ms backoff sleeps should stay well under the
	// default twenty-attempt budget
	if elapsed > 3*time.Second {
		t.Fatalf("retry budget not honored, took %v", elapsed)
	}
}

func TestOpenCH_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := Config{CH: CHConfig{
		URL:        "clickhouse://127.0.0.1:1/default?dial_timeout=200ms",
		ClientRole: "test",
		ClientTag:  "dev",
	}}

	c, err := openCH(ctx, cfg, nil)
	if err == nil {
		t.Fatalf("expected openCH error for unreachable server, got %T", c)
	}
}
