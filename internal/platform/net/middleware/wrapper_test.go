package middleware_test

import (
	"compress/flate"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marginalia/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestWrappers_ReturnHandlers(t *testing.T) {
	if middleware.RequestID() == nil ||
		middleware.RealIP() == nil ||
		middleware.Timeout(time.Second) == nil ||
		middleware.NoCache() == nil ||
		middleware.RedirectSlashes() == nil ||
		middleware.StripSlashes() == nil ||
		middleware.Heartbeat("/health") == nil {
		t.Fatal("expected non nil handlers from wrappers")
	}
}

func TestRequestID_SeedsContext(t *testing.T) {
	mw := middleware.RequestID()

	var got string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = chimw.GetReqID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mw(h).ServeHTTP(rr, req)

	if got == "" {
		t.Fatal("expected a generated request id on the context")
	}
}

func TestRequestID_KeepsInboundHeader(t *testing.T) {
	mw := middleware.RequestID()

	var got string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = chimw.GetReqID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	rr := httptest.NewRecorder()
	mw(h).ServeHTTP(rr, req)

	if !strings.Contains(got, "upstream-42") {
		t.Fatalf("expected the upstream id to survive, got %q", got)
	}
}

func TestCompress_DeflateWhenAccepted(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		// body must be big enough to trigger compression
		_, _ = io.WriteString(w, strings.Repeat("a", 4<<10))
	})

	mw := middleware.Compress(flate.DefaultCompression)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	mw(h).ServeHTTP(rr, req)

	if rr.Result().Header.Get("Content-Encoding") == "" {
		t.Fatalf("expected Content-Encoding to be set")
	}
}

func TestCORS_DefaultsFillMissing(t *testing.T) {
	cors := middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: []string{"https://example.com"},
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rr := httptest.NewRecorder()
	cors(h).ServeHTTP(rr, req)

	if rr.Code != 200 && rr.Code != 204 {
		t.Fatalf("expected 200 or 204 got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("expected Access-Control-Allow-Methods to be set")
	}
	if rr.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatal("expected Access-Control-Allow-Headers to be set")
	}
}
