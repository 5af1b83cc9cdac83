package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "marginalia/internal/platform/net/http"
)

func docsMux(t *testing.T, enabled bool) *chi.Mux {
	t.Helper()
	mux := chi.NewMux()
	Mount(phttp.AdaptChi(mux), enabled)
	return mux
}

func get(t *testing.T, mux *chi.Mux, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMount_DisabledMountsNothing(t *testing.T) {
	mux := docsMux(t, false)
	for _, target := range []string{"/api/docs", "/api/docs/doc.json", "/api/docs/index.html"} {
		if rec := get(t, mux, target); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
	}
}

func TestMount_RedirectsBareDocsPath(t *testing.T) {
	rec := get(t, docsMux(t, true), "/api/docs")
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/docs/" {
		t.Fatalf("location = %q", loc)
	}
}

func TestMount_ServesSpecJSON(t *testing.T) {
	rec := get(t, docsMux(t, true), "/api/docs/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("cache-control = %q", cc)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("spec is not JSON: %v", err)
	}
	if _, ok := spec["openapi"]; !ok {
		t.Fatalf("spec missing openapi version: %v", spec)
	}
}

func TestMount_ServesUI(t *testing.T) {
	rec := get(t, docsMux(t, true), "/api/docs/index.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("UI page is empty")
	}
}
