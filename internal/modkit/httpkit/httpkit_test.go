package httpkit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "marginalia/internal/platform/errors"
	phttp "marginalia/internal/platform/net/http"
)

// envelope mirrors the wire fields these tests care about
type envelope struct {
	StatusCode int             `json:"status_code"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type markerInput struct {
	Lemma string `json:"lemma" validate:"required,min=2"`
	Lang  string `json:"lang"  validate:"omitempty,len=2"`
}

func serve(t *testing.T, mount func(Router), method, target, body string) (int, envelope) {
	t.Helper()

	mux := chi.NewMux()
	mount(phttp.AdaptChi(mux))

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec.Code, env
}

func TestPostJSON_BindsBodyAndEnvelopesResult(t *testing.T) {
	mount := func(r Router) {
		PostJSON[markerInput](r, "/markers", func(_ *http.Request, in markerInput) (any, error) {
			return map[string]string{"lemma": strings.ToLower(in.Lemma)}, nil
		})
	}

	code, env := serve(t, mount, http.MethodPost, "/markers", `{"lemma":"DAMN","lang":"en"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if env.StatusCode != http.StatusOK || env.Status != "OK" {
		t.Fatalf("envelope header = %d %q", env.StatusCode, env.Status)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["lemma"] != "damn" {
		t.Fatalf("lemma = %q, want damn", data["lemma"])
	}
}

func TestPostJSON_ValidatesBeforeHandlerRuns(t *testing.T) {
	called := false
	mount := func(r Router) {
		PostJSON[markerInput](r, "/markers", func(_ *http.Request, _ markerInput) (any, error) {
			called = true
			return nil, nil
		})
	}

	code, env := serve(t, mount, http.MethodPost, "/markers", `{"lemma":""}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if !strings.Contains(env.Error, "lemma") {
		t.Fatalf("error %q should name the failing field", env.Error)
	}
	if called {
		t.Fatal("handler ran on invalid input")
	}
}

func TestPostJSON_RejectsUnknownFieldsAndEmptyBodies(t *testing.T) {
	mount := func(r Router) {
		PostJSON[markerInput](r, "/markers", func(_ *http.Request, _ markerInput) (any, error) {
			return nil, nil
		})
	}

	for name, body := range map[string]string{
		"unknown field": `{"lemma":"damn","severity":3}`,
		"empty body":    "",
		"broken json":   `{"lemma":`,
	} {
		code, _ := serve(t, mount, http.MethodPost, "/markers", body)
		if code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, code)
		}
	}
}

func TestGet_EnvelopesResult(t *testing.T) {
	mount := func(r Router) {
		Get(r, "/detector", func(_ *http.Request) (any, error) {
			return map[string]int{"version": 3}, nil
		})
	}

	code, env := serve(t, mount, http.MethodGet, "/detector", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var data map[string]int
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["version"] != 3 {
		t.Fatalf("version = %d, want 3", data["version"])
	}
}

func TestGet_ErrorPicksItsOwnStatus(t *testing.T) {
	mount := func(r Router) {
		Get(r, "/markers/missing", func(_ *http.Request) (any, error) {
			return nil, perr.NotFoundf("no such marker")
		})
	}

	code, env := serve(t, mount, http.MethodGet, "/markers/missing", "")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if env.Error != "no such marker" {
		t.Fatalf("error = %q", env.Error)
	}
	if len(env.Data) != 0 {
		t.Fatalf("error envelope carries data: %s", env.Data)
	}
}
