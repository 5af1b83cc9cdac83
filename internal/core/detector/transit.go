package detector

import (
	"sort"
	"strings"
)

type transitCand struct {
	start, end int
	airline    string
	code       string
	flight     string
}

// words allowed between a carrier mention and its flight number
var transitGlue = map[string]struct{}{
	"flight": {}, "flights": {}, "no": {}, "no.": {}, "number": {}, "#": {},
}

// scanTransit finds flight references: IATA code plus number, the word
// "flight" with a number, and carrier names. Adjacent mentions of the same
// flight collapse into one match
func (d *Detector) scanTransit(text string, out []Match) []Match {
	var cands []transitCand

	for _, m := range d.re("flight_code").FindAllStringSubmatchIndex(text, -1) {
		if !digitBoundaryOK(text, m[0], m[1]) || !boundaryOK(text, m[0], m[1]) {
			continue
		}
		a, ok := d.p.AirlineByCode[groupText(text, m, 1)]
		if !ok {
			continue
		}
		cands = append(cands, transitCand{m[0], m[1], a.Name, a.Code, groupText(text, m, 2)})
	}

	for _, m := range d.re("flight_word").FindAllStringSubmatchIndex(text, -1) {
		if !digitBoundaryOK(text, m[0], m[1]) || !boundaryOK(text, m[0], m[1]) {
			continue
		}
		c := transitCand{start: m[0], end: m[1], flight: groupText(text, m, 2)}
		if code := strings.ToUpper(groupText(text, m, 1)); code != "" {
			if a, ok := d.p.AirlineByCode[code]; ok {
				c.airline, c.code = a.Name, a.Code
			}
		}
		cands = append(cands, c)
	}

	shadow := asciiLower(text)
	d.carriers.FindAll(shadow, func(s, e, id int) bool {
		if boundaryOK(text, s, e) {
			a := d.carrierTerms[id]
			cands = append(cands, transitCand{start: s, end: e, airline: a.Name, code: a.Code})
		}
		return true
	})

	if len(cands) == 0 {
		return out
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end > cands[j].end
	})
	kept := make([]transitCand, 0, len(cands))
	lastEnd := -1
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		kept = append(kept, c)
		lastEnd = c.end
	}

	cur := []transitCand{kept[0]}
	flush := func() {
		out = append(out, buildTransit(cur))
	}
	for _, c := range kept[1:] {
		prev := cur[len(cur)-1]
		if transitCompatible(cur, c) && transitGapOK(text[prev.end:c.start]) {
			cur = append(cur, c)
			continue
		}
		flush()
		cur = []transitCand{c}
	}
	flush()
	return out
}

func transitGapOK(gap string) bool {
	if len(gap) > 12 {
		return false
	}
	fields := strings.FieldsFunc(strings.ToLower(gap), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	for _, w := range fields {
		if _, ok := transitGlue[w]; !ok {
			return false
		}
	}
	return true
}

// transitCompatible rejects merging two distinct flights or carriers
func transitCompatible(g []transitCand, c transitCand) bool {
	for _, p := range g {
		if p.flight != "" && c.flight != "" {
			return false
		}
		if p.airline != "" && c.airline != "" && p.airline != c.airline {
			return false
		}
	}
	return true
}

func buildTransit(g []transitCand) Match {
	start, end := g[0].start, g[len(g)-1].end
	var name, code, digits string
	for _, c := range g {
		if name == "" {
			name = c.airline
		}
		if code == "" {
			code = c.code
		}
		if digits == "" {
			digits = c.flight
		}
	}
	info := TransitInfo{}
	if name != "" {
		info.Airline = &name
	}
	if digits != "" {
		f := code + digits
		info.Flight = &f
	}
	return Match{Category: CategoryTransit, Start: start, End: end, Transit: &info}
}
