package detector

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	afStreet = 1 << iota
	afUnit
	afCity
)

type addrFrag struct {
	start, end int
	kind       int

	city, state, postal string
}

var phoneLabelRe = regexp.MustCompile(`(?i)^(?:phone|tel|ph)[:. ] ?`)

// scanAddresses assembles street, unit and city/region/postal fragments into
// postal address matches, then pulls organization, job title, name, country
// and phone from the immediate context when they read as part of the same
// contact block
func (d *Detector) scanAddresses(text string, out []Match) []Match {
	var frags []addrFrag

	for _, id := range []string{"street_line", "street_pobox"} {
		for _, pr := range d.re(id).FindAllStringIndex(text, -1) {
			if !boundaryOK(text, pr[0], pr[1]) {
				continue
			}
			frags = append(frags, addrFrag{start: pr[0], end: pr[1], kind: afStreet})
		}
	}
	for _, pr := range d.re("street_unit").FindAllStringIndex(text, -1) {
		if !boundaryOK(text, pr[0], pr[1]) {
			continue
		}
		frags = append(frags, addrFrag{start: pr[0], end: pr[1], kind: afUnit})
	}
	for _, m := range d.re("city_region_postal").FindAllStringSubmatchIndex(text, -1) {
		city, shift := trimCity(groupText(text, m, 1))
		f := addrFrag{start: m[2] + shift, end: m[1], kind: afCity}
		f.city = strings.TrimSpace(city)
		f.state = strings.ToUpper(groupText(text, m, 2))
		f.postal = groupText(text, m, 3)
		if ext := groupText(text, m, 4); ext != "" {
			f.postal += "-" + ext
		}
		if f.city == "" || !boundaryOK(text, f.start, f.end) {
			continue
		}
		frags = append(frags, f)
	}
	if len(frags) == 0 {
		return out
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].start != frags[j].start {
			return frags[i].start < frags[j].start
		}
		return frags[i].end > frags[j].end
	})
	kept := make([]addrFrag, 0, len(frags))
	lastEnd := -1
	for _, f := range frags {
		if f.start < lastEnd {
			continue
		}
		kept = append(kept, f)
		lastEnd = f.end
	}

	cur := []addrFrag{kept[0]}
	mask := kept[0].kind
	flush := func() {
		if mask&(afStreet|afCity) != 0 {
			out = append(out, d.buildAddress(text, cur))
		}
	}
	for _, f := range kept[1:] {
		prev := cur[len(cur)-1]
		if f.kind&mask == 0 && addrGapOK(text[prev.end:f.start]) {
			cur = append(cur, f)
			mask |= f.kind
			continue
		}
		flush()
		cur = []addrFrag{f}
		mask = f.kind
	}
	flush()
	return out
}

// addrGapOK accepts only short separator runs between fragments of one
// address
func addrGapOK(gap string) bool {
	if len(gap) > 3 {
		return false
	}
	for i := 0; i < len(gap); i++ {
		switch gap[i] {
		case ' ', ',', '.':
		default:
			return false
		}
	}
	return true
}

func (d *Detector) buildAddress(text string, g []addrFrag) Match {
	start, end := g[0].start, g[len(g)-1].end
	info := AddressInfo{}

	streetLo, streetHi := -1, -1
	for _, f := range g {
		switch f.kind {
		case afStreet:
			if streetLo < 0 {
				streetLo, streetHi = f.start, f.end
			}
		case afUnit:
			if streetLo >= 0 && f.start >= streetHi {
				streetHi = f.end
			}
		case afCity:
			if info.City == nil {
				v := f.city
				info.City = &v
			}
			if info.State == nil && f.state != "" {
				v := f.state
				info.State = &v
			}
			if info.PostalCode == nil && f.postal != "" {
				v := f.postal
				info.PostalCode = &v
			}
		}
	}
	if streetLo >= 0 {
		v := strings.TrimRight(text[streetLo:streetHi], " ,")
		info.Street = &v
	}

	start = d.peelPrefix(text, start, &info)
	end = d.takeCountry(text, end, &info)
	end = d.takePhone(text, end, &info)

	return Match{Category: CategoryAddress, Start: start, End: end, Address: &info}
}

// peelPrefix walks comma-separated clauses left of the address, claiming
// organization, job title and finally a personal name. A name is only taken
// once a title or organization anchored the clause chain to this address
func (d *Detector) peelPrefix(text string, start int, info *AddressInfo) int {
	for steps := 0; steps < 3; steps++ {
		i := start
		for i > 0 && text[i-1] == ' ' {
			i--
		}
		if i == 0 || text[i-1] != ',' {
			return start
		}
		j := i - 1
		k := j
		for k > 0 && j-k <= 40 {
			c := text[k-1]
			if c == ',' || c == ';' || c == ':' || c == '\n' {
				break
			}
			k--
		}
		if j-k > 40 {
			return start
		}
		clause := strings.TrimSpace(text[k:j])
		if clause == "" {
			return start
		}
		switch {
		case info.Organization == nil && d.orgRe.MatchString(clause):
			v := clause
			info.Organization = &v
		case info.JobTitle == nil && d.jobRe.MatchString(clause):
			v := clause
			info.JobTitle = &v
		case info.Name == nil && (info.JobTitle != nil || info.Organization != nil) && nameShape(clause):
			v := clause
			info.Name = &v
			return k + countLeadingSpaces(text[k:j])
		default:
			return start
		}
		start = k + countLeadingSpaces(text[k:j])
	}
	return start
}

func countLeadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// takeCountry extends the span over a trailing country word
func (d *Detector) takeCountry(text string, end int, info *AddressInfo) int {
	i := end
	for i < len(text) && i-end < 3 && (text[i] == ' ' || text[i] == ',') {
		i++
	}
	if i == end || i >= len(text) {
		return end
	}
	rest := text[i:]
	loc := d.countryRe.FindStringIndex(rest)
	if loc == nil || !boundaryOK(rest, 0, loc[1]) {
		return end
	}
	v := rest[:loc[1]]
	info.Country = &v
	return i + loc[1]
}

// takePhone extends the span over a trailing phone number, with or without
// a "phone:" style label
func (d *Detector) takePhone(text string, end int, info *AddressInfo) int {
	i := end
	for i < len(text) && i-end < 4 {
		if c := text[i]; c == ' ' || c == ',' || c == ';' || c == '|' {
			i++
			continue
		}
		break
	}
	if i >= len(text) {
		return end
	}
	if lm := phoneLabelRe.FindStringIndex(text[i:]); lm != nil {
		i += lm[1]
	}
	pr := d.re("phone_separated").FindStringIndex(text[i:])
	if pr == nil || pr[0] != 0 {
		return end
	}
	hi := i + pr[1]
	if !digitBoundaryOK(text, i, hi) || !boundaryOK(text, i, hi) {
		return end
	}
	num, ok := normalizePhone(text[i:hi])
	if !ok {
		return end
	}
	info.Phone = &num
	return hi
}

// trimCity cuts a city capture back to its trailing run of capitalized
// words, or the last word when the text is all lowercase. Returns the kept
// text and its byte offset within raw
func trimCity(raw string) (string, int) {
	type span struct{ s, e int }
	var words []span
	i := 0
	for i < len(raw) {
		for i < len(raw) && raw[i] == ' ' {
			i++
		}
		if i >= len(raw) {
			break
		}
		s := i
		for i < len(raw) && raw[i] != ' ' {
			i++
		}
		words = append(words, span{s, i})
	}
	if len(words) == 0 {
		return raw, 0
	}
	k := len(words)
	for k > 0 {
		r, _ := utf8.DecodeRuneInString(raw[words[k-1].s:])
		if !unicode.IsUpper(r) {
			break
		}
		k--
	}
	if k == len(words) {
		k = len(words) - 1
	}
	return raw[words[k].s:], words[k].s
}

// nameShape reports whether clause reads as a short personal name
func nameShape(clause string) bool {
	words := strings.Fields(clause)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		r, sz := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
		for _, rr := range w[sz:] {
			if !unicode.IsLetter(rr) && rr != '\'' && rr != '-' && rr != '.' {
				return false
			}
		}
	}
	return true
}
