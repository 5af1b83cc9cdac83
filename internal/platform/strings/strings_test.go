package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	if got := IfEmpty(in, []int{9}); len(got) != 3 || got[0] != 1 {
		t.Fatalf("non-empty input replaced: %#v", got)
	}

	var empty []string
	if got := IfEmpty(empty, []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("empty input kept: %#v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("stats", "module name"); got != "stats" {
		t.Fatalf("want stats, got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("blank value should panic")
		}
	}()
	_ = MustString("   ", "module name")
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"/stats/":    "/stats",
		" resolve  ": "/resolve",
		"//review//": "/review",
		"/":          "", // panics
		"":           "", // panics
	}
	for in, want := range cases {
		if want == "" {
			func() {
				defer func() {
					if recover() == nil {
						t.Fatalf("want panic for %q", in)
					}
				}()
				_ = MustPrefix(in)
			}()
			continue
		}
		if got := MustPrefix(in); got != want {
			t.Fatalf("in %q want %q got %q", in, want, got)
		}
	}
}

func TestEmptyToNil(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"en":      "en",
		" en ":    " en ", // content survives untouched
		"   ":     "",
		"\t\n":    "",
		"":        "",
		"grc-Grk": "grc-Grk",
	}
	for in, want := range cases {
		if got := EmptyToNil(in); got != want {
			t.Errorf("EmptyToNil(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPtrAndDeref(t *testing.T) {
	t.Parallel()

	if Ptr("") != nil {
		t.Fatal("empty string should map to nil")
	}
	p := Ptr("la")
	if p == nil || *p != "la" {
		t.Fatalf("Ptr(la) = %v", p)
	}
	if got := Deref(p); got != "la" {
		t.Fatalf("Deref round trip = %q", got)
	}
	if got := Deref(nil); got != "" {
		t.Fatalf("Deref(nil) = %q", got)
	}

	// the pointer must not alias the caller's variable
	s := "en"
	q := Ptr(s)
	s = "fr"
	if *q != "en" {
		t.Fatalf("Ptr aliased its argument: %q", *q)
	}
}
