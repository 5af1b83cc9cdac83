// Package detector scans raw text for dates, links, postal addresses, phone
// numbers and flight references. Spans are byte offsets [start,end) over the
// original input, never over a normalized copy, so callers can slice the
// source text directly
package detector

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"marginalia/internal/core/rulepack"
)

// Category tags a match with the table that produced it
type Category string

const (
	// CategoryDate marks date and time expressions
	CategoryDate Category = "date"
	// CategoryLink marks URLs, bare domains and email addresses
	CategoryLink Category = "link"
	// CategoryAddress marks postal address fragments
	CategoryAddress Category = "address"
	// CategoryPhone marks phone numbers
	CategoryPhone Category = "phone_number"
	// CategoryTransit marks airline flight references
	CategoryTransit Category = "transit_information"
)

// Valid reports whether c is one of the declared categories
func (c Category) Valid() bool {
	switch c {
	case CategoryDate, CategoryLink, CategoryAddress, CategoryPhone, CategoryTransit:
		return true
	default:
		return false
	}
}

var categoryRank = map[Category]int{
	CategoryDate:    0,
	CategoryLink:    1,
	CategoryAddress: 2,
	CategoryPhone:   3,
	CategoryTransit: 4,
}

// Match is one detection with its category payload. Exactly one payload
// pointer is set, matching Category
type Match struct {
	Category Category
	Start    int
	End      int

	Date    *DateInfo
	Link    *LinkInfo
	Address *AddressInfo
	Phone   *PhoneInfo
	Transit *TransitInfo
}

// DateInfo carries what could be recovered from a date expression.
// When is absent for relative phrases and bare times scanned without a
// reference instant; Duration stays 0 when the expression names a point
// rather than a span
type DateInfo struct {
	When     *time.Time
	Duration time.Duration
	Zone     string
}

// LinkInfo carries the resolved URL
type LinkInfo struct {
	URL string
}

// AddressInfo carries whichever address components were present in the
// source text. Absent components stay nil rather than empty
type AddressInfo struct {
	Name         *string
	JobTitle     *string
	Organization *string
	Street       *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	Phone        *string
}

// Empty reports whether no component was recovered
func (a *AddressInfo) Empty() bool {
	if a == nil {
		return true
	}
	return a.Name == nil && a.JobTitle == nil && a.Organization == nil &&
		a.Street == nil && a.City == nil && a.State == nil &&
		a.PostalCode == nil && a.Country == nil && a.Phone == nil
}

// PhoneInfo carries the normalized number: digits only, keeping a leading +
type PhoneInfo struct {
	Number string
}

// TransitInfo carries the carrier and flight identifier when recoverable
type TransitInfo struct {
	Airline *string
	Flight  *string
}

// Options controls detector behavior
type Options struct {
	// Ref anchors relative phrases and bare times to an absolute instant.
	// Zero leaves When unset for those matches
	Ref time.Time
	// MaxMatches is the hard cap on emitted matches per scan (0 = no cap)
	MaxMatches int
}

// templateIDs are the rulepack templates the scanners depend on
var templateIDs = []string{
	"date_iso_datetime", "date_iso", "date_slash", "date_month_day",
	"date_day_month", "date_weekday", "date_relative", "date_in_amount",
	"time_clock", "time_half", "time_named", "time_range", "duration_for",
	"link_url", "link_www", "link_bare", "link_email",
	"phone_separated", "phone_plus_run",
	"street_line", "street_pobox", "street_unit", "city_region_postal",
	"flight_code", "flight_word",
}

// Detector runs multi-category detection over raw text
type Detector struct {
	p    *rulepack.Pack
	opts Options

	// carriers matches airline names over an ASCII-lowered shadow
	carriers     *acAutomaton
	carrierTerms []rulepack.Airline

	// clause matchers built from pack vocabularies, used to enrich
	// address matches from surrounding text
	orgRe     *regexp.Regexp
	jobRe     *regexp.Regexp
	countryRe *regexp.Regexp
}

// New creates a Detector with default options
func New(p *rulepack.Pack) (*Detector, error) {
	return NewWithOptions(p, Options{})
}

// NewWithOptions creates a Detector with custom options
func NewWithOptions(p *rulepack.Pack, opts Options) (*Detector, error) {
	if p == nil {
		return nil, errors.New("detector: nil rulepack")
	}
	for _, id := range templateIDs {
		if _, ok := p.Template(id); !ok {
			return nil, fmt.Errorf("detector: rulepack missing template %q", id)
		}
	}

	d := &Detector{p: p, opts: opts}

	// Airline names sorted for a deterministic automaton
	names := make([]string, 0, len(p.AirlineByName))
	for nm := range p.AirlineByName {
		names = append(names, nm)
	}
	sort.Strings(names)

	ac := newAutomaton()
	terms := make([]rulepack.Airline, 0, len(names))
	for _, nm := range names {
		ac.AddTerm(nm)
		terms = append(terms, p.AirlineByName[nm])
	}
	ac.Build()
	d.carriers = ac
	d.carrierTerms = terms

	// QuoteMeta keeps arbitrary vocabulary safe to embed
	d.orgRe = regexp.MustCompile(`(?i)^(?:[a-z0-9&'-]+ +){1,4}` + altGroup(p.OrgSuffixes) + `\.?$`)
	d.jobRe = regexp.MustCompile(`(?i)^(?:[a-z'-]+ +){0,2}` + altGroup(p.JobTitles) + `$`)
	d.countryRe = regexp.MustCompile(`(?i)^` + altGroup(p.Countries) + `\.?`)

	return d, nil
}

// altGroup builds a non-capturing alternation over a vocabulary set,
// longest first so Go's leftmost-first matching prefers the fuller phrase
func altGroup(words map[string]struct{}) string {
	vals := make([]string, 0, len(words))
	for w := range words {
		if w = strings.TrimSpace(strings.ToLower(w)); w != "" {
			vals = append(vals, w)
		}
	}
	sort.Slice(vals, func(i, j int) bool {
		if len(vals[i]) != len(vals[j]) {
			return len(vals[i]) > len(vals[j])
		}
		return vals[i] < vals[j]
	})
	for i, v := range vals {
		vals[i] = regexp.QuoteMeta(v)
	}
	return "(?:" + strings.Join(vals, "|") + ")"
}

// Scan runs every category over text and returns matches ordered by start
// ascending, then end descending (longer first), then category
func (d *Detector) Scan(text string) []Match {
	if text == "" {
		return nil
	}

	var out []Match
	out = d.scanLinks(text, out)
	out = d.scanPhones(text, out)
	out = d.scanDates(text, out)
	out = d.scanAddresses(text, out)
	out = d.scanTransit(text, out)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End > out[j].End
		}
		return categoryRank[out[i].Category] < categoryRank[out[j].Category]
	})

	if d.opts.MaxMatches > 0 && len(out) > d.opts.MaxMatches {
		out = out[:d.opts.MaxMatches]
	}
	return out
}

// re fetches a compiled template; ids were verified at construction
func (d *Detector) re(id string) *regexp.Regexp {
	r, _ := d.p.Template(id)
	return r
}
