//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"marginalia/internal/platform/logger"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// runPostgres starts a throwaway postgres and hands back its DSN
func runPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func quietLogger() logger.Logger { return zerolog.New(io.Discard) }

func openTestPool(t *testing.T, ctx context.Context, dsn string) *sqlPool {
	t.Helper()

	s := &Store{Log: quietLogger()}
	cfg := Config{
		PG: PGConfig{
			URL:      dsn,
			MaxConns: 2,
			LogSQL:   true,
		},
	}
	txr, err := openPG(ctx, cfg, s)
	if err != nil {
		t.Fatalf("openPG: %v", err)
	}
	pool, ok := txr.(*sqlPool)
	if !ok {
		t.Fatalf("openPG returned %T, want *sqlPool", txr)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestSQLPool_Integration_ExecQueryScan(t *testing.T) {
	dsn, stop := runPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool := openTestPool(t, ctx, dsn)

	if _, err := pool.Exec(ctx, `
		CREATE TEMP TABLE probe_markers (
			id    SERIAL PRIMARY KEY,
			lemma TEXT NOT NULL
		)
	`); err != nil {
		t.Fatalf("create temp table: %v", err)
	}

	ct, err := pool.Exec(ctx, `INSERT INTO probe_markers (lemma) VALUES ($1), ($2)`, "damn", "blast")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if ct.RowsAffected() != 2 {
		t.Fatalf("RowsAffected = %d, want 2", ct.RowsAffected())
	}

	var first string
	if err := pool.QueryRow(ctx, `SELECT lemma FROM probe_markers WHERE id = $1`, 1).Scan(&first); err != nil {
		t.Fatalf("queryrow scan: %v", err)
	}
	if first != "damn" {
		t.Fatalf("first lemma = %q", first)
	}

	rs, err := pool.Query(ctx, `SELECT id, lemma FROM probe_markers ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rs.Close()

	if cols := rs.Columns(); len(cols) != 2 || cols[0] != "id" || cols[1] != "lemma" {
		t.Fatalf("columns = %#v", cols)
	}

	var lemmas []string
	for rs.Next() {
		var id int
		var lemma string
		if err := rs.Scan(&id, &lemma); err != nil {
			t.Fatalf("rows scan: %v", err)
		}
		lemmas = append(lemmas, lemma)
	}
	if err := rs.Err(); err != nil {
		t.Fatalf("rows err: %v", err)
	}
	if len(lemmas) != 2 || lemmas[0] != "damn" || lemmas[1] != "blast" {
		t.Fatalf("lemmas = %v", lemmas)
	}

	// double close stays quiet through pg.Close
	if err := pool.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSQLPool_Integration_TxCommitAndRollback(t *testing.T) {
	dsn, stop := runPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool := openTestPool(t, ctx, dsn)

	if _, err := pool.Exec(ctx, `
		CREATE TEMP TABLE probe_tx (
			id  SERIAL PRIMARY KEY,
			val INT NOT NULL
		)
	`); err != nil {
		t.Fatalf("create temp table: %v", err)
	}

	if err := pool.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO probe_tx (val) VALUES (10)`)
		return err
	}); err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	var committed int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM probe_tx WHERE val = 10`).Scan(&committed); err != nil {
		t.Fatalf("count committed: %v", err)
	}
	if committed != 1 {
		t.Fatalf("committed = %d, want 1", committed)
	}

	abort := errors.New("abort")
	err := pool.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO probe_tx (val) VALUES (20)`); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("Tx error = %v, want the fn error back", err)
	}

	var rolled int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM probe_tx WHERE val = 20`).Scan(&rolled); err != nil {
		t.Fatalf("count rolled back: %v", err)
	}
	if rolled != 0 {
		t.Fatalf("rolled = %d, want 0", rolled)
	}
}
