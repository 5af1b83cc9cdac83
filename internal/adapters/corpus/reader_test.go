package corpus

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func gzipLines(t *testing.T, lines ...string) io.ReadCloser {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, l := range lines {
		if _, err := gz.Write([]byte(l + "\n")); err != nil {
			t.Fatalf("write line: %v", err)
		}
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return io.NopCloser(&buf)
}

func TestReader_StreamsRecordsAndSkipsMalformed(t *testing.T) {
	rd, err := NewReader(gzipLines(t,
		`{"source":"s1","key":"k1","text":"hello","created_at":"2026-01-02T03:04:05Z"}`,
		`{this is not json`,
		`{"source":"s1","key":"k2","text":"world","markers":[{"start":0,"end":5,"payload":"hl"}],"created_at":"2026-01-02T03:04:06Z"}`,
	))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer func() { _ = rd.Close() }()

	a, err := rd.Next()
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if a.Key != "k1" || a.Text != "hello" {
		t.Fatalf("first record = %+v", a)
	}

	b, err := rd.Next()
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if b.Key != "k2" || len(b.Markers) != 1 || b.Markers[0].Payload != "hl" {
		t.Fatalf("second record = %+v", b)
	}

	if _, err := rd.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want EOF after last record, got %v", err)
	}
	// EOF is sticky
	if _, err := rd.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want sticky EOF, got %v", err)
	}

	records, n := rd.Stats()
	if records != 2 || n <= 0 {
		t.Fatalf("stats = %d records, %d bytes", records, n)
	}
}

func TestNewReader_RejectsPlainInput(t *testing.T) {
	if _, err := NewReader(io.NopCloser(bytes.NewBufferString("not gzip at all"))); err == nil {
		t.Fatalf("plain input should not open")
	}
}

func TestFileRef_Valid(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"notes-2024-01.jsonl.gz", true},
		{"", false},
		{".", false},
		{"..", false},
		{"dir/escape.gz", false},
		{`dir\escape.gz`, false},
	}
	for _, c := range cases {
		if got := (FileRef{Name: c.name}).Valid(); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDirFetcher_Fetch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.gz"), []byte("payload"), 0o644); err != nil {
		t.Fatalf("seed archive: %v", err)
	}

	f := NewDirFetcher(dir)
	rc, err := f.Fetch(context.Background(), FileRef{Name: "a.gz"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "payload" {
		t.Fatalf("read %q", got)
	}

	if _, err := f.Fetch(context.Background(), FileRef{Name: "../a.gz"}); err == nil {
		t.Fatalf("path-escaping name should be rejected")
	}
}

func TestDeriveMarkers(t *testing.T) {
	ms := DeriveMarkers("x ```abc``` y")
	if len(ms) != 1 {
		t.Fatalf("markers = %+v", ms)
	}
	if ms[0].Start != 5 || ms[0].End != 8 || ms[0].Payload != "zone:code_fence" {
		t.Fatalf("marker = %+v", ms[0])
	}

	if ms := DeriveMarkers("plain prose, no markup"); ms != nil {
		t.Fatalf("plain text derived markers: %+v", ms)
	}
}

func TestTruncateUTF8(t *testing.T) {
	if got := truncateUTF8([]byte("short"), 16); got != "short" {
		t.Fatalf("no-op truncate = %q", got)
	}
	// cut falls inside the second rune; back up to the boundary
	if got := truncateUTF8([]byte("日本語"), 4); got != "日..." {
		t.Fatalf("rune-boundary truncate = %q", got)
	}
}
