package time

import (
	stdsql "database/sql"
	"testing"
	"time"
)

func TestNullPtr(t *testing.T) {
	t.Parallel()

	if got := NullPtr(stdsql.NullTime{}); got != nil {
		t.Fatalf("NULL should map to nil, got %v", got)
	}

	when := time.Date(2025, 9, 3, 13, 0, 0, 0, time.UTC)
	nt := stdsql.NullTime{Time: when, Valid: true}
	got := NullPtr(nt)
	if got == nil || !got.Equal(when) {
		t.Fatalf("valid time lost: %v", got)
	}

	// the result must not alias the input struct
	nt.Time = when.Add(time.Hour)
	if !got.Equal(when) {
		t.Fatalf("pointer aliases the scanned value: %v", got)
	}
}
