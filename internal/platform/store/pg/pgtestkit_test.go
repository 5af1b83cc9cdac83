package pg

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// withTestDB opens a client against dsn, applies tune, runs fn, and closes
// the client on cleanup
func withTestDB(t *testing.T, dsn string, tune func(*pgxpool.Config), fn func(p *PG)) {
	t.Helper()
	client, err := Open(context.Background(), Config{URL: dsn}, nil, tune)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	fn(client)
}

// acquireConn pins one session so TEMP tables and session settings stick
func acquireConn(t *testing.T, p *PG, ctx context.Context) *pgxpool.Conn {
	t.Helper()
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(func() { conn.Release() })
	return conn
}
