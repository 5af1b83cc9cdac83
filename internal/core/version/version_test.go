package version

import "testing"

func TestInfo_DevDefaults(t *testing.T) {
	bi := Info()
	if bi.Service != "marginalia-api" {
		t.Fatalf("service = %q", bi.Service)
	}
	if bi.Version != "dev" || bi.Commit != "none" || bi.Date != "unknown" {
		t.Fatalf("unexpected unstamped build: %+v", bi)
	}
}

func TestString_OneLineForm(t *testing.T) {
	bi := BuildInfo{Service: "marginalia-api", Version: "v0.1.0", Commit: "abcd123", Date: "2026-08-25"}
	if got, want := bi.String(), "marginalia-api v0.1.0 (abcd123, 2026-08-25)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
