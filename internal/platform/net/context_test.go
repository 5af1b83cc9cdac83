package net_test

import (
	"context"
	"testing"

	pnet "marginalia/internal/platform/net"
)

func TestRequestIDRoundTrip(t *testing.T) {
	base := context.Background()

	t.Run("set and get", func(t *testing.T) {
		ctx := pnet.WithRequestID(base, "req-9c1")
		if got := pnet.RequestID(ctx); got != "req-9c1" {
			t.Fatalf("RequestID got %q want %q", got, "req-9c1")
		}
	})

	t.Run("empty id leaves context untouched", func(t *testing.T) {
		ctx := pnet.WithRequestID(base, "")
		if ctx != base {
			t.Fatalf("expected the original context back")
		}
		if got := pnet.RequestID(ctx); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
	})

	t.Run("unset reads as empty", func(t *testing.T) {
		if got := pnet.RequestID(base); got != "" {
			t.Fatalf("RequestID on bare context got %q", got)
		}
	})
}
