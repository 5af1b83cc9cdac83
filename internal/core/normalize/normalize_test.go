package normalize

import (
	"reflect"
	"testing"
)

// Test table covers each stage and combined pipelines.
func TestFold_Table(t *testing.T) {
	f := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "hello world",
			out:  "hello world",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "case fold",
			in:   "MiXeD CaSe",
			out:  "mixed case",
		},
		{
			name: "remove zero-widths",
			in:   "a​b‍c", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "abc",
		},
		{
			name: "remove uncomposed combining marks",
			in:   "x́y", // x + combining acute has no precomposed form
			out:  "xy",
		},
		{
			name: "composed accents survive nfkc",
			in:   "café",
			out:  "café",
		},
		{
			name: "width fold fullwidth",
			in:   "ＷＩＤＥ text", // fullwidth letters
			out:  "wide text",
		},
		{
			name: "nfkc ligature",
			in:   "oﬃce", // ﬃ ligature
			out:  "office",
		},
		{
			name: "collapse whitespace keeps line breaks",
			in:   "a\t\tb\nc   d",
			out:  "a b\nc d",
		},
		{
			name: "combined normalization",
			in:   "  ZW​ N‌ B\uFEFF S  \t\n", // zero-widths + spaces + FEFF
			out:  "zw n b s",
		},
		{
			name: "idempotent",
			in:   f.Fold("Ｎｏｔｅ\t\tＢ‍ｏｘ  "),
			out:  "note box",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := f.Fold(tc.in)
			if got != tc.out {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Folding again should be identical
			got2 := f.Fold(got)
			if got2 != got {
				t.Fatalf("Fold not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"ascii controls and DEL drop", "a\x00b\x01c\x7fde\nf\tg", "abcde\nf\tg"},
		{"allowed whitespace survives", "l1\r\nl2\tend", "l1\r\nl2\tend"},
		{"c1 controls drop", "fee\u0085fie\u009ffoe", "feefiefoe"},
		{"invalid utf8 bytes drop", "ok\xff\xfe still ok", "ok still ok"},
		{"replacement char is legitimate", "a\uFFFDb", "a\uFFFDb"},
		{"multibyte text untouched", "καλημέρα früh 朝", "καλημέρα früh 朝"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	clean := "already clean\nline two"
	if got := Sanitize(clean); got != clean {
		t.Fatalf("Sanitize changed a clean string: %q", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b   c \r\n "
	want := "a\nb c"
	got := collapseSpaces(in)
	if got != want {
		t.Fatalf("collapseSpaces(%q) = %q, want %q", in, got, want)
	}
}

func TestDetectZones(t *testing.T) {
	body := "see ```\nrm -rf /tmp/x\n``` and `inline` too\n> a quote"
	want := []ZoneSpan{
		{Type: ZoneCodeFence, Start: 7, End: 22},
		{Type: ZoneCodeInline, Start: 31, End: 37},
		{Type: ZoneQuote, Start: 45, End: 52},
	}
	got := DetectZones(body)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectZones = %+v, want %+v", got, want)
	}
	for _, z := range got {
		if z.Type == ZoneCodeFence && body[z.Start:z.End] != "\nrm -rf /tmp/x\n" {
			t.Fatalf("fence content %q", body[z.Start:z.End])
		}
	}
}

func TestDetectZones_UnclosedFence(t *testing.T) {
	if got := DetectZones("start ``` no close"); len(got) != 0 {
		t.Fatalf("unclosed fence should yield no zones, got %+v", got)
	}
}
