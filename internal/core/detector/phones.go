package detector

import (
	"regexp"
	"sort"
	"strings"
)

var (
	isoDateShape  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateShape  = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`)
	dottedQuad    = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)
	phoneDigitMin = 7
	phoneDigitMax = 16
)

// scanPhones finds separated digit groups and bare international runs.
// Candidates that look like dates, dotted quads or stray digit runs are
// rejected before anything is emitted
func (d *Detector) scanPhones(text string, out []Match) []Match {
	type cand struct {
		start, end int
		number     string
	}
	var cands []cand

	for _, id := range []string{"phone_separated", "phone_plus_run"} {
		for _, pr := range d.re(id).FindAllStringIndex(text, -1) {
			start, end := pr[0], pr[1]
			if !digitBoundaryOK(text, start, end) || !boundaryOK(text, start, end) {
				continue
			}
			number, ok := normalizePhone(text[start:end])
			if !ok {
				continue
			}
			cands = append(cands, cand{start, end, number})
		}
	}

	if len(cands) == 0 {
		return out
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end > cands[j].end
	})

	lastEnd := -1
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		out = append(out, Match{
			Category: CategoryPhone,
			Start:    c.start,
			End:      c.end,
			Phone:    &PhoneInfo{Number: c.number},
		})
		lastEnd = c.end
	}
	return out
}

// normalizePhone reduces a raw candidate to digits, keeping a leading plus.
// Returns false for shapes that read as dates or addresses rather than
// phone numbers
func normalizePhone(raw string) (string, bool) {
	if isoDateShape.MatchString(raw) || dmyDateShape.MatchString(raw) || dottedQuad.MatchString(raw) {
		return "", false
	}
	var b strings.Builder
	b.Grow(len(raw) + 1)
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	number := b.String()
	digits := len(number)
	if number != "" && number[0] == '+' {
		digits--
	}
	if digits < phoneDigitMin || digits > phoneDigitMax {
		return "", false
	}
	return number, true
}
