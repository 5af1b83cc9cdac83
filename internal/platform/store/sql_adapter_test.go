package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"marginalia/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubPgxRow implements pgx.Row
type stubPgxRow struct {
	scan func(dest ...any) error
}

func (r *stubPgxRow) Scan(dest ...any) error {
	if r.scan != nil {
		return r.scan(dest...)
	}
	return nil
}

// stubPgxRows implements pgx.Rows over a fixed grid
type stubPgxRows struct {
	fields []pgconn.FieldDescription
	grid   [][]any
	idx    int
	err    error
	closed bool
}

func newStubRows(cols []string, grid [][]any) *stubPgxRows {
	fds := make([]pgconn.FieldDescription, len(cols))
	for i, c := range cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return &stubPgxRows{fields: fds, grid: grid, idx: -1}
}

func (r *stubPgxRows) Conn() *pgx.Conn                              { return nil }
func (r *stubPgxRows) Close()                                       { r.closed = true }
func (r *stubPgxRows) Err() error                                   { return r.err }
func (r *stubPgxRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubPgxRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *stubPgxRows) RawValues() [][]byte                          { return nil }

func (r *stubPgxRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx < len(r.grid)
}

func (r *stubPgxRows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.grid) {
		return nil, errors.New("out of range")
	}
	return r.grid[r.idx], nil
}

func (r *stubPgxRows) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.idx < 0 || r.idx >= len(r.grid) {
		return errors.New("scan out of range")
	}
	cells := r.grid[r.idx]
	if len(cells) != len(dest) {
		return errors.New("dest count mismatch")
	}
	for i := range dest {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Pointer || !dv.Elem().CanSet() {
			return errors.New("dest not a settable pointer")
		}
		cv := reflect.ValueOf(cells[i])
		switch {
		case cv.IsValid() && cv.Type().AssignableTo(dv.Elem().Type()):
			dv.Elem().Set(cv)
		case cv.IsValid() && cv.Type().ConvertibleTo(dv.Elem().Type()):
			dv.Elem().Set(cv.Convert(dv.Elem().Type()))
		default:
			return errors.New("cell type mismatch")
		}
	}
	return nil
}

// stubPgxTx implements pgx.Tx; only Exec, Query, and QueryRow matter here
type stubPgxTx struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (f *stubPgxTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.execFn != nil {
		return f.execFn(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *stubPgxTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.queryFn != nil {
		return f.queryFn(ctx, sql, args...)
	}
	return newStubRows([]string{"n"}, [][]any{{1}}), nil
}

func (f *stubPgxTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.queryRowFn != nil {
		return f.queryRowFn(ctx, sql, args...)
	}
	return &stubPgxRow{}
}

func (f *stubPgxTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f *stubPgxTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (f *stubPgxTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (f *stubPgxTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (f *stubPgxTx) Conn() *pgx.Conn                           { return nil }
func (f *stubPgxTx) Commit(context.Context) error              { return nil }
func (f *stubPgxTx) Rollback(context.Context) error            { return nil }
func (f *stubPgxTx) Begin(ctx context.Context) (pgx.Tx, error) { return f, nil }

// recordingTracer captures every event observe forwards
type recordingTracer struct {
	events []pg.QueryEvent
}

func (r *recordingTracer) OnQuery(_ context.Context, ev pg.QueryEvent) {
	r.events = append(r.events, ev)
}

func TestCmdTag_ExposesPgconnFields(t *testing.T) {
	t.Parallel()

	ct := cmdTag{t: pgconn.NewCommandTag("UPDATE 3")}
	if ct.String() != "UPDATE 3" {
		t.Fatalf("String = %q", ct.String())
	}
	if ct.RowsAffected() != 3 {
		t.Fatalf("RowsAffected = %d, want 3", ct.RowsAffected())
	}
}

func TestRowSet_IteratesAndExposesColumns(t *testing.T) {
	t.Parallel()

	stub := newStubRows([]string{"id", "lemma"}, [][]any{{int64(1), "damn"}, {int64(2), "hell"}})
	rs := rowSet{r: stub}

	if cols := rs.Columns(); len(cols) != 2 || cols[0] != "id" || cols[1] != "lemma" {
		t.Fatalf("Columns = %#v", cols)
	}

	var ids []int64
	var lemmas []string
	for rs.Next() {
		var id int64
		var lemma string
		if err := rs.Scan(&id, &lemma); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		ids = append(ids, id)
		lemmas = append(lemmas, lemma)
	}
	if err := rs.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	rs.Close()
	if !stub.closed {
		t.Fatal("Close did not reach the underlying rows")
	}
	if !reflect.DeepEqual(ids, []int64{1, 2}) || !reflect.DeepEqual(lemmas, []string{"damn", "hell"}) {
		t.Fatalf("ids=%v lemmas=%v", ids, lemmas)
	}
}

func TestRowSet_SurfacesIterationError(t *testing.T) {
	t.Parallel()

	stub := newStubRows([]string{"n"}, nil)
	stub.err = errors.New("conn reset")

	rs := rowSet{r: stub}
	if rs.Next() {
		t.Fatal("Next should be false once the rows carry an error")
	}
	if err := rs.Err(); err == nil || err.Error() != "conn reset" {
		t.Fatalf("Err = %v", err)
	}
}

func TestScanRow_SignalsDoneWithScanError(t *testing.T) {
	t.Parallel()

	scanErr := errors.New("no rows")
	var seen error
	notified := false

	sr := scanRow{
		r:    &stubPgxRow{scan: func(...any) error { return scanErr }},
		done: func(err error) { notified = true; seen = err },
	}

	var n int
	if err := sr.Scan(&n); !errors.Is(err, scanErr) {
		t.Fatalf("Scan = %v, want scan error", err)
	}
	if !notified || !errors.Is(seen, scanErr) {
		t.Fatalf("done hook notified=%v seen=%v", notified, seen)
	}
}

func TestTxSession_RoundTrips(t *testing.T) {
	t.Parallel()

	fx := &stubPgxTx{
		execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			if sql != "UPDATE documents SET annotated = TRUE WHERE id = $1" || len(args) != 1 {
				return pgconn.CommandTag{}, errors.New("unexpected exec")
			}
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
		queryFn: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
			if sql != "SELECT id, lemma FROM markers WHERE doc_id = $1" || len(args) != 1 {
				return nil, errors.New("unexpected query")
			}
			return newStubRows([]string{"id", "lemma"}, [][]any{{int64(7), "blast"}}), nil
		},
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &stubPgxRow{scan: func(dest ...any) error {
				if p, ok := dest[0].(*int); ok {
					*p = 42
					return nil
				}
				return errors.New("bad dest")
			}}
		},
	}
	sess := txSession{tx: fx}

	ct, err := sess.Exec(context.Background(), "UPDATE documents SET annotated = TRUE WHERE id = $1", "d1")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if ct.RowsAffected() != 1 {
		t.Fatalf("RowsAffected = %d", ct.RowsAffected())
	}

	rs, err := sess.Query(context.Background(), "SELECT id, lemma FROM markers WHERE doc_id = $1", "d1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer rs.Close()
	if !rs.Next() {
		t.Fatal("expected one row")
	}
	var id int64
	var lemma string
	if err := rs.Scan(&id, &lemma); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if id != 7 || lemma != "blast" {
		t.Fatalf("row = %d %q", id, lemma)
	}
	if rs.Next() {
		t.Fatal("unexpected second row")
	}

	var n int
	if err := sess.QueryRow(context.Background(), "SELECT count(*) FROM markers").Scan(&n); err != nil {
		t.Fatalf("QueryRow.Scan: %v", err)
	}
	if n != 42 {
		t.Fatalf("scalar = %d", n)
	}
}

func TestTxSession_PropagatesErrors(t *testing.T) {
	t.Parallel()

	fx := &stubPgxTx{
		execFn: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("exec failed")
		},
		queryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
			return nil, errors.New("query failed")
		},
		queryRowFn: func(context.Context, string, ...any) pgx.Row {
			return &stubPgxRow{scan: func(...any) error { return errors.New("scan failed") }}
		},
	}
	sess := txSession{tx: fx}

	if _, err := sess.Exec(context.Background(), "x"); err == nil {
		t.Fatal("Exec error lost")
	}
	if _, err := sess.Query(context.Background(), "x"); err == nil {
		t.Fatal("Query error lost")
	}
	var n int
	if err := sess.QueryRow(context.Background(), "x").Scan(&n); err == nil {
		t.Fatal("QueryRow error lost")
	}
}

func TestQueryTrace_ObservesStatements(t *testing.T) {
	t.Parallel()

	rec := &recordingTracer{}
	sess := txSession{
		tx:         &stubPgxTx{},
		queryTrace: queryTrace{tracer: rec, slowUS: 0},
	}

	if _, err := sess.Exec(context.Background(), "DELETE FROM review_queue WHERE id = $1", "r1"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.SQL != "DELETE FROM review_queue WHERE id = $1" {
		t.Fatalf("event SQL = %q", ev.SQL)
	}
	if ev.Err != nil {
		t.Fatalf("event Err = %v", ev.Err)
	}
	// a zero threshold marks everything slow
	if !ev.Slow {
		t.Fatal("expected Slow with zero threshold")
	}

	quiet := txSession{
		tx:         &stubPgxTx{},
		queryTrace: queryTrace{tracer: rec, slowUS: int64(time.Hour / time.Microsecond)},
	}
	if _, err := quiet.Exec(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got := rec.events[len(rec.events)-1]; got.Slow {
		t.Fatal("hour threshold should not flag Slow")
	}
}

func TestQueryTrace_NilTracerIsQuiet(t *testing.T) {
	t.Parallel()

	sess := txSession{tx: &stubPgxTx{}}
	if _, err := sess.Exec(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Exec with nil tracer: %v", err)
	}
}
