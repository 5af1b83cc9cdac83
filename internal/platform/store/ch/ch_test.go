package ch

import (
	"context"
	"strings"
	"testing"
	"time"
)

// TestOpen_EmptyURL rejects a blank DSN before dialing
func TestOpen_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "   "}); err == nil {
		t.Fatalf("Open expected error for empty DSN, got nil")
	}
}

// TestOpen_BadDSN surfaces the parse error
func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{URL: "://bad"})
	if err == nil {
		t.Fatalf("Open expected error for malformed DSN, got nil")
	}
	if !strings.Contains(err.Error(), "parse DSN") {
		t.Fatalf("Open error should mention DSN parsing, got %q", err.Error())
	}
}

// TestOpen_Unreachable fails the boot ping when nothing listens
func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// port 1 is closed everywhere; dial_timeout keeps the failure quick
	_, err := Open(ctx, Config{URL: "clickhouse://127.0.0.1:1/default?dial_timeout=200ms"})
	if err == nil {
		t.Fatalf("Open expected error for unreachable server, got nil")
	}
}

// TestInsertBatch_NoRows is a no op and never touches the connection
func TestInsertBatch_NoRows(t *testing.T) {
	t.Parallel()

	c := &CH{}
	if err := c.InsertBatch(context.Background(), "t", []string{"a"}, nil); err != nil {
		t.Fatalf("InsertBatch with no rows should be nil, got %v", err)
	}
}

// TestInsertBatch_NoCols rejects a batch with rows but no column list
func TestInsertBatch_NoCols(t *testing.T) {
	t.Parallel()

	c := &CH{}
	err := c.InsertBatch(context.Background(), "t", nil, [][]any{{1}})
	if err == nil {
		t.Fatalf("InsertBatch expected error for missing columns, got nil")
	}
}

// TestClientInfo carries product, role and runtime identity
func TestClientInfo(t *testing.T) {
	t.Parallel()

	ci := clientInfo(" rollups ", "v1.2.3")
	if len(ci.Products) == 0 {
		t.Fatalf("clientInfo returned no products")
	}
	if ci.Products[0].Name != "marginalia" || ci.Products[0].Version != "v1.2.3" {
		t.Fatalf("unexpected head product: %+v", ci.Products[0])
	}

	got := map[string]string{}
	for _, p := range ci.Products {
		got[p.Name] = p.Version
	}
	if got["role"] != "rollups" {
		t.Fatalf("role not trimmed: %q", got["role"])
	}
	if got["go"] == "" {
		t.Fatalf("go version product missing")
	}
	if got["commit"] == "" {
		t.Fatalf("commit product missing, want short sha or unknown")
	}
}
