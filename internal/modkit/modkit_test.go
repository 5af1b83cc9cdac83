package modkit

import (
	"testing"

	phttp "marginalia/internal/platform/net/http"
)

// recorder satisfies Module and notes each call
type recorder struct {
	mounted bool
	ports   any
}

func (s *recorder) MountRoutes(phttp.Router) { s.mounted = true }
func (s *recorder) Ports() any               { return s.ports }
func (s *recorder) Name() string             { return "recorder" }

var _ Module = (*recorder)(nil)

func TestModuleSurface(t *testing.T) {
	t.Parallel()

	m := &recorder{ports: 42}

	m.MountRoutes(nil)
	if !m.mounted {
		t.Fatal("MountRoutes never reached the module")
	}
	if got := m.Ports(); got != 42 {
		t.Fatalf("Ports = %v, want 42", got)
	}
	if m.Name() != "recorder" {
		t.Fatalf("Name = %q", m.Name())
	}
}
