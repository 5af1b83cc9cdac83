package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize strips what storage must never see: NUL and the other ASCII
// controls aside from tab, newline and carriage return, DEL, the C1
// control block, and bytes that do not decode as UTF-8. Clean input
// comes back unchanged without allocating
func Sanitize(s string) string {
	i := firstDirty(s)
	if i < 0 {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))
	out.WriteString(s[:i])
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++ // undecodable byte
			continue
		}
		if keepRune(r) {
			// copy the original bytes, never re-encode
			out.WriteString(s[i : i+size])
		}
		i += size
	}
	return out.String()
}

// firstDirty returns the byte index of the first thing Sanitize would
// remove, or -1 when the string is already clean
func firstDirty(s string) int {
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if !keepByte(b) {
				return i
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !keepRune(r) {
			return i
		}
		i += size
	}
	return -1
}

func keepByte(b byte) bool {
	if b >= 0x20 && b != 0x7F {
		return true
	}
	return b == '\n' || b == '\r' || b == '\t'
}

func keepRune(r rune) bool {
	if r < utf8.RuneSelf {
		return keepByte(byte(r))
	}
	// C1 controls
	return r < 0x80 || r > 0x9F
}
