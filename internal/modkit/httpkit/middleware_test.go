package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func applyStack(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- { // outermost first
		h = stack[i](h)
	}
	return h
}

func TestCommonStack_RequestReachesHandler(t *testing.T) {
	stack := CommonStack()
	if len(stack) == 0 {
		t.Fatalf("expected a non-empty stack")
	}

	hit := 0
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit++
		w.WriteHeader(http.StatusNoContent)
	})
	root := applyStack(final, stack)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if hit != 1 {
		t.Fatalf("expected the final handler to run once, got %d", hit)
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from final handler, got %d", rr.Code)
	}
}

func TestCommonStack_Heartbeat(t *testing.T) {
	root := applyStack(http.NotFoundHandler(), CommonStack())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /health to answer 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCommonStack_PropagatesRequestID(t *testing.T) {
	var seen string
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	})
	root := applyStack(final, CommonStack())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-abc123")
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if seen != "req-abc123" {
		t.Fatalf("expected the inbound request id to propagate, got %q", seen)
	}
}
