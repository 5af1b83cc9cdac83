package detector

import (
	"net/url"
	"sort"
	"strings"
)

// link source preference when spans collide exactly
const (
	linkScheme = iota
	linkWWW
	linkEmail
	linkBare
)

type linkCand struct {
	start, end int
	rank       int
	url        string
}

// scanLinks finds scheme URLs, www hosts, bare domains with a known TLD and
// email addresses. Matches that cannot resolve to a URL are dropped here, so
// every emitted match carries one
func (d *Detector) scanLinks(text string, out []Match) []Match {
	var cands []linkCand

	for _, pr := range d.re("link_url").FindAllStringIndex(text, -1) {
		start, end := trimLink(text, pr[0], pr[1])
		if end <= start {
			continue
		}
		u, err := url.Parse(text[start:end])
		if err != nil || u.Host == "" {
			continue
		}
		cands = append(cands, linkCand{start, end, linkScheme, u.String()})
	}

	for _, pr := range d.re("link_www").FindAllStringIndex(text, -1) {
		start, end := trimLink(text, pr[0], pr[1])
		if end <= start || !leftBoundaryOK(text, start) {
			continue
		}
		u, err := url.Parse("https://" + text[start:end])
		if err != nil || u.Host == "" {
			continue
		}
		cands = append(cands, linkCand{start, end, linkWWW, u.String()})
	}

	for _, pr := range d.re("link_email").FindAllStringIndex(text, -1) {
		start, end := pr[0], pr[1]
		if !boundaryOK(text, start, end) {
			continue
		}
		cands = append(cands, linkCand{start, end, linkEmail, "mailto:" + text[start:end]})
	}

	for _, pr := range d.re("link_bare").FindAllStringIndex(text, -1) {
		start, end := trimLink(text, pr[0], pr[1])
		if end <= start {
			continue
		}
		// part of an email or a scheme URL; those scanners own it
		if start > 0 && (text[start-1] == '@' || text[start-1] == '/' || text[start-1] == '.') {
			continue
		}
		if !leftBoundaryOK(text, start) {
			continue
		}
		u, err := url.Parse("https://" + text[start:end])
		if err != nil || u.Host == "" {
			continue
		}
		cands = append(cands, linkCand{start, end, linkBare, u.String()})
	}

	if len(cands) == 0 {
		return out
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		if cands[i].end != cands[j].end {
			return cands[i].end > cands[j].end
		}
		return cands[i].rank < cands[j].rank
	})

	lastEnd := -1
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		out = append(out, Match{
			Category: CategoryLink,
			Start:    c.start,
			End:      c.end,
			Link:     &LinkInfo{URL: c.url},
		})
		lastEnd = c.end
	}
	return out
}

// trimLink strips trailing punctuation that prose attaches to URLs, keeping
// balanced closing brackets
func trimLink(s string, start, end int) (int, int) {
loop:
	for end > start {
		switch s[end-1] {
		case '.', ',', ';', ':', '!', '?', '\'', '"':
			end--
		case ')':
			if strings.Count(s[start:end], "(") >= strings.Count(s[start:end], ")") {
				break loop
			}
			end--
		case ']':
			if strings.Count(s[start:end], "[") >= strings.Count(s[start:end], "]") {
				break loop
			}
			end--
		case '}':
			if strings.Count(s[start:end], "{") >= strings.Count(s[start:end], "}") {
				break loop
			}
			end--
		default:
			break loop
		}
	}
	return start, end
}
