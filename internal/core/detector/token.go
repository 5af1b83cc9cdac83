package detector

import (
	"unicode"
	"unicode/utf8"
)

// isWord reports whether r is considered a word character for boundary checks.
// Keep conservative, but be a bit more Unicode-friendly: letters, numbers,
// combining marks (Mn), and connector punctuation (Pc, e.g. underscore).
// Hyphen and most punctuation remain non-word
func isWord(r rune) bool {
	if r == utf8.RuneError || r == 0 {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.In(r, unicode.Mn, unicode.Pc)
}

// boundaryOK reports whether [start,end) sits on token boundaries
func boundaryOK(s string, start, end int) bool {
	var prev, next rune
	if start > 0 {
		prev, _ = utf8.DecodeLastRuneInString(s[:start])
	}
	if end < len(s) {
		next, _ = utf8.DecodeRuneInString(s[end:])
	}
	return !isWord(prev) && !isWord(next)
}

// leftBoundaryOK reports whether the rune preceding start is a non-word rune.
// Regexp \b only understands ASCII, so this closes the gap for multibyte
// letters directly before a match
func leftBoundaryOK(s string, start int) bool {
	if start <= 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:start])
	return !isWord(prev)
}

// digitBoundaryOK rejects spans glued to adjacent digits, so a phone or
// flight number is never carved out of a longer digit run
func digitBoundaryOK(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// asciiLower lowercases ASCII letters byte-wise, leaving multibyte runes
// untouched. Output length equals input length, so byte offsets into the
// shadow are valid offsets into the original
func asciiLower(s string) string {
	// fast path: nothing to change
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if b := s[i]; b >= 'A' && b <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	buf := []byte(s)
	for i, b := range buf {
		if b >= 'A' && b <= 'Z' {
			buf[i] = b + ('a' - 'A')
		}
	}
	return string(buf)
}
