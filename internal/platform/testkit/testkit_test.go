package testkit

import "testing"

var greeting = func() string { return "original" }

func TestSwap_RestoresOnCleanup(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Swap(t, &greeting, func() string { return "swapped" })
		if greeting() != "swapped" {
			t.Fatal("replacement not installed")
		}
	})
	if greeting() != "original" {
		t.Fatalf("seam not restored: %q", greeting())
	}
}

func TestMustPanic_CatchesPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
}

func TestMustContain_FindsNeedle(t *testing.T) {
	MustContain(t, "component=resolver detver=3", "detver=")
}

func TestSwap_WorksOnPlainValues(t *testing.T) {
	limit := 100
	t.Run("inner", func(t *testing.T) {
		Swap(t, &limit, 5)
		if limit != 5 {
			t.Fatalf("limit = %d", limit)
		}
	})
	if limit != 100 {
		t.Fatalf("limit not restored: %d", limit)
	}
}
