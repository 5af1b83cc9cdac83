package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "marginalia/internal/platform/net/http"
)

func stampHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(key, value)
			next.ServeHTTP(w, r)
		})
	}
}

func hit(t *testing.T, mux *chi.Mux, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMountUnder_ScopesRoutesAndMiddleware(t *testing.T) {
	mux := chi.NewMux()
	r := phttp.AdaptChi(mux)

	mw := []func(http.Handler) http.Handler{stampHeader("X-Scope", "stats")}
	MountUnder(r, "/stats", mw, func(sub Router) {
		Get(sub, "/kind", func(_ *http.Request) (any, error) { return "ok", nil })
	})
	Get(r, "/outside", func(_ *http.Request) (any, error) { return "ok", nil })

	rec := hit(t, mux, "/stats/kind")
	if rec.Code != http.StatusOK {
		t.Fatalf("scoped route status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Scope"); got != "stats" {
		t.Fatalf("X-Scope = %q, want stats", got)
	}

	// sibling routes stay out of the scope
	rec = hit(t, mux, "/outside")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Scope") != "" {
		t.Fatalf("outside route leaked scope: %d %q", rec.Code, rec.Header().Get("X-Scope"))
	}

	if rec := hit(t, mux, "/kind"); rec.Code != http.StatusNotFound {
		t.Fatalf("unprefixed path should 404, got %d", rec.Code)
	}
}

func TestMountUnder_MiddlewaresRunInOrder(t *testing.T) {
	mux := chi.NewMux()
	var order []string
	note := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	MountUnder(phttp.AdaptChi(mux), "/m", []func(http.Handler) http.Handler{note("first"), note("second")}, func(sub Router) {
		Get(sub, "/x", func(_ *http.Request) (any, error) { return nil, nil })
	})

	hit(t, mux, "/m/x")
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("middleware order = %v", order)
	}
}

func TestMountAPIV1_MountsUnderVersionedPrefix(t *testing.T) {
	mux := chi.NewMux()

	MountAPIV1(phttp.AdaptChi(mux), nil, func(api Router) {
		Get(api, "/resolve/ping", func(_ *http.Request) (any, error) { return "pong", nil })
	})

	if rec := hit(t, mux, "/api/v1/resolve/ping"); rec.Code != http.StatusOK {
		t.Fatalf("versioned route status = %d", rec.Code)
	}
	if rec := hit(t, mux, "/resolve/ping"); rec.Code != http.StatusNotFound {
		t.Fatalf("unversioned path should 404, got %d", rec.Code)
	}
}
