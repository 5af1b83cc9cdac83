// Package normalize produces the two projections of a document body:
// Sanitize yields the stored form, Fold yields the searchable form.
//
// Folding repairs UTF-8, applies NFKC, case folds, strips combining
// marks and zero-width format runes, folds width variants to ASCII,
// and collapses whitespace. Matching against the folded column is what
// lets a query for "cafe" find "ｃａｆé".
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// A Folder is safe for concurrent use; transformer state lives in the
// pool, not on the struct
type Folder struct{}

// New constructs a Folder
func New() *Folder { return &Folder{} }

// foldChain builds one transformer chain. NFKC must run first so case
// and width folding see composed runes; mark stripping runs after
// folding so decomposed accents are gone either way
func foldChain() transform.Transformer {
	return transform.Chain(
		norm.NFKC,
		cases.Fold(),
		runes.Remove(runes.In(unicode.Mn)), // combining marks
		runes.Remove(runes.In(unicode.Cf)), // ZWJ, ZWNJ, FEFF and friends
		width.Fold,
	)
}

// transformer chains are stateful, so each Fold borrows one
var foldPool = sync.Pool{
	New: func() any { return foldChain() },
}

// Fold builds the search projection of a body
func (f *Folder) Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(Sanitize(s), "")

	tr := foldPool.Get().(transform.Transformer)
	out, _, _ := transform.String(tr, s) // cannot fail after UTF-8 repair
	tr.Reset()
	foldPool.Put(tr)

	return collapseSpaces(out)
}

// collapseSpaces rewrites each whitespace run as a single separator and
// trims the edges. A run containing a line break becomes one newline,
// any other run one space, so paragraph shape survives folding
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var sep byte // pending separator, 0 when none
	for _, r := range s {
		if unicode.IsSpace(r) {
			if r == '\n' || r == '\r' || sep == '\n' {
				sep = '\n'
			} else {
				sep = ' '
			}
			continue
		}
		if sep != 0 && b.Len() > 0 {
			b.WriteByte(sep)
		}
		sep = 0
		b.WriteRune(r)
	}
	return b.String()
}
