package normalize

import "strings"

// ZoneType identifies a markup region in a document body
type ZoneType string

const (
	// ZoneCodeFence is the inside of a ``` fenced block
	ZoneCodeFence ZoneType = "code_fence"
	// ZoneCodeInline is the inside of a single-tick span
	ZoneCodeInline ZoneType = "code_inline"
	// ZoneQuote is a line starting with '>'
	ZoneQuote ZoneType = "quote"
)

// ZoneSpan is a byte range [Start,End) over the scanned string
type ZoneSpan struct {
	Type       ZoneType
	Start, End int
}

// fence remembers a fenced block with its delimiters, so the inline
// pass can mask the whole region and not just the content
type fence struct {
	open, close int // delimiter-inclusive [open,close)
	lo, hi      int // content [lo,hi)
}

// DetectZones finds markup regions in a body: fenced code, inline code
// and quoted lines. Spans exclude the delimiters and are byte offsets
// into the input, so callers can attach them to the stored body as is.
// Fences win over inline ticks; an unclosed fence yields nothing
func DetectZones(body string) []ZoneSpan {
	if body == "" {
		return nil
	}
	var out []ZoneSpan

	var fences []fence
	for i := 0; ; {
		open := strings.Index(body[i:], "```")
		if open < 0 {
			break
		}
		lo := i + open + 3
		end := strings.Index(body[lo:], "```")
		if end < 0 {
			break // unclosed, nothing after it counts
		}
		f := fence{open: i + open, close: lo + end + 3, lo: lo, hi: lo + end}
		fences = append(fences, f)
		if f.lo < f.hi {
			out = append(out, ZoneSpan{Type: ZoneCodeFence, Start: f.lo, End: f.hi})
		}
		i = f.close
	}

	inFence := func(pos int) bool {
		for _, f := range fences {
			if f.open <= pos && pos < f.close {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(body); i++ {
		if body[i] != '`' || inFence(i) {
			continue
		}
		rest := strings.IndexByte(body[i+1:], '`')
		if rest < 0 {
			break // no ticks left anywhere
		}
		j := i + 1 + rest
		if inFence(j) {
			continue
		}
		if i+1 < j {
			out = append(out, ZoneSpan{Type: ZoneCodeInline, Start: i + 1, End: j})
		}
		i = j
	}

	for ls := 0; ls <= len(body); {
		le := ls + strings.IndexByte(body[ls:], '\n')
		if le < ls {
			le = len(body)
		}
		i := ls
		for i < le && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i < le && body[i] == '>' {
			qs := i + 1
			for qs < le && body[qs] == ' ' {
				qs++
			}
			if qs < le {
				out = append(out, ZoneSpan{Type: ZoneQuote, Start: qs, End: le})
			}
		}
		if le == len(body) {
			break
		}
		ls = le + 1
	}

	return out
}
