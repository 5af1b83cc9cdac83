package repokit

import (
	"context"
	"errors"
	"testing"

	"marginalia/internal/platform/store"
)

// markerRepo is a tiny repo in the shape the service packages use
type markerRepo struct{ q Queryer }

func (r *markerRepo) Touch(ctx context.Context) error {
	_, err := r.q.Exec(ctx, "update markers set last_seen = now()")
	return err
}

type markerBinder struct{}

func (markerBinder) Bind(q Queryer) *markerRepo { return &markerRepo{q: q} }

// countingQ records statements so tests can tell pool from tx traffic
type countingQ struct {
	name  string
	execs int
}

func (c *countingQ) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	c.execs++
	return nil, nil
}

func (c *countingQ) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("not backed")
}

func (c *countingQ) QueryRow(context.Context, string, ...any) store.Row { return nil }

// poolWithTx is a TxRunner whose transactions run on a separate Queryer
type poolWithTx struct {
	countingQ
	tx countingQ
}

func (p *poolWithTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(&p.tx)
}

func TestBinder_SameRepoServesPoolAndTx(t *testing.T) {
	var b Binder[*markerRepo] = markerBinder{}
	pool := &poolWithTx{countingQ: countingQ{name: "pool"}, tx: countingQ{name: "tx"}}

	// direct reads run on the pool
	if err := b.Bind(pool).Touch(context.Background()); err != nil {
		t.Fatalf("pool touch: %v", err)
	}
	if pool.execs != 1 || pool.tx.execs != 0 {
		t.Fatalf("pool path: execs=%d tx=%d", pool.execs, pool.tx.execs)
	}

	// the same binder inside a transaction runs on the tx queryer
	var tr TxRunner = pool
	err := tr.Tx(context.Background(), func(q store.RowQuerier) error {
		return b.Bind(q).Touch(context.Background())
	})
	if err != nil {
		t.Fatalf("tx touch: %v", err)
	}
	if pool.execs != 1 || pool.tx.execs != 1 {
		t.Fatalf("tx path: execs=%d tx=%d", pool.execs, pool.tx.execs)
	}
}

func TestBinder_EachBindIsIndependent(t *testing.T) {
	b := markerBinder{}
	first := &countingQ{name: "first"}
	second := &countingQ{name: "second"}

	ra := b.Bind(first)
	rb := b.Bind(second)
	_ = ra.Touch(context.Background())
	_ = ra.Touch(context.Background())
	_ = rb.Touch(context.Background())

	if first.execs != 2 || second.execs != 1 {
		t.Fatalf("bind instances shared state: first=%d second=%d", first.execs, second.execs)
	}
}
