// Package rulepack loads and compiles the detection tables from the embedded
// rules.json. It expands regex templates and prepares dictionary lookups for
// the detector
package rulepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

//go:embed rules.json
var embedded []byte

type rawAirline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type rawStreets struct {
	Suffixes     []string `json:"suffixes"`
	Units        []string `json:"units"`
	Directionals []string `json:"directionals"`
}

type rawRegion struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type rawMonth struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Number  int      `json:"number"`
}

type rawWeekday struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Number  int      `json:"number"`
}

type rawRelative struct {
	Phrase  string `json:"phrase"`
	Seconds int64  `json:"seconds"`
}

type rawCalendar struct {
	Months   []rawMonth    `json:"months"`
	Weekdays []rawWeekday  `json:"weekdays"`
	Relative []rawRelative `json:"relative"`
}

type rawZone struct {
	Abbr          string `json:"abbr"`
	Name          string `json:"name"`
	OffsetSeconds int    `json:"offset_seconds"`
}

type rawTemplate struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

type rawPack struct {
	Version     int            `json:"version"`
	Meta        map[string]any `json:"meta"`
	Airlines    []rawAirline   `json:"airlines"`
	TLDs        []string       `json:"tlds"`
	Streets     rawStreets     `json:"streets"`
	Regions     []rawRegion    `json:"regions"`
	Countries   []string       `json:"countries"`
	OrgSuffixes []string       `json:"org_suffixes"`
	JobTitles   []string       `json:"job_titles"`
	Calendar    rawCalendar    `json:"calendar"`
	Zones       []rawZone      `json:"zones"`
	Templates   []rawTemplate  `json:"templates"`
}

// Airline is one carrier row with its IATA code
type Airline struct {
	Code string
	Name string
}

// Region is a state or province row
type Region struct {
	Code string
	Name string
}

// Zone maps a timezone abbreviation to its identifier and UTC offset
type Zone struct {
	Abbr          string
	Name          string
	OffsetSeconds int
}

// Template is a compiled regex template rule
type Template struct {
	ID              string
	Category        string
	PatternExpanded string
	CaseSensitive   bool
}

// Pack represents the compiled detection tables
type Pack struct {
	Version int
	Meta    map[string]any

	// Compiled templates, 1:1 with Templates
	Templates []Template
	Compiled  []*regexp.Regexp
	byID      map[string]int

	// Transit
	Airlines      []Airline
	AirlineByCode map[string]Airline // upper code -> row
	AirlineByName map[string]Airline // lower full name -> row

	// Links
	TLDs map[string]struct{} // lowercased

	// Addresses
	StreetSuffixes map[string]struct{}
	UnitLabels     map[string]struct{}
	Directionals   map[string]struct{}
	Regions        []Region
	RegionByCode   map[string]Region // upper code -> row
	Countries      map[string]struct{}
	OrgSuffixes    map[string]struct{}
	JobTitles      map[string]struct{}

	// Dates
	MonthByName   map[string]time.Month
	WeekdayByName map[string]time.Weekday
	Relatives     map[string]int64 // lower phrase -> seconds offset
	ZoneByAbbr    map[string]Zone

	// Flattened slot values used by expandSlots
	flatSlots map[string][]string
}

// Load returns the compiled pack from the embedded rules.json
func Load() (*Pack, error) { return Parse(embedded) }

// Parse compiles a rules.json document. The packer tool runs candidate
// output through this before writing, so a pack that loads here is a pack
// that will load embedded
func Parse(raw []byte) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("rulepack: unsupported rules.json version %d (want 1)", rp.Version)
	}
	if len(rp.Airlines) == 0 || len(rp.TLDs) == 0 || len(rp.Calendar.Months) == 0 {
		return nil, fmt.Errorf("rulepack: rules.json missing required tables")
	}

	p := &Pack{
		Version:        rp.Version,
		Meta:           rp.Meta,
		byID:           make(map[string]int, len(rp.Templates)),
		AirlineByCode:  make(map[string]Airline, len(rp.Airlines)),
		AirlineByName:  make(map[string]Airline, len(rp.Airlines)),
		TLDs:           toSet(rp.TLDs),
		StreetSuffixes: toSet(rp.Streets.Suffixes),
		UnitLabels:     toSet(rp.Streets.Units),
		Directionals:   toSet(rp.Streets.Directionals),
		RegionByCode:   make(map[string]Region, len(rp.Regions)),
		Countries:      toSet(rp.Countries),
		OrgSuffixes:    toSet(rp.OrgSuffixes),
		JobTitles:      toSet(rp.JobTitles),
		MonthByName:    make(map[string]time.Month, 36),
		WeekdayByName:  make(map[string]time.Weekday, 21),
		Relatives:      make(map[string]int64, len(rp.Calendar.Relative)),
		ZoneByAbbr:     make(map[string]Zone, len(rp.Zones)),
	}

	for _, a := range rp.Airlines {
		code := strings.ToUpper(strings.TrimSpace(a.Code))
		name := strings.TrimSpace(a.Name)
		if code == "" || name == "" {
			continue
		}
		if _, dup := p.AirlineByCode[code]; dup {
			return nil, fmt.Errorf("rulepack: duplicate airline code %q", code)
		}
		row := Airline{Code: code, Name: name}
		p.Airlines = append(p.Airlines, row)
		p.AirlineByCode[code] = row
		p.AirlineByName[strings.ToLower(name)] = row
	}

	for _, r := range rp.Regions {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		name := strings.ToLower(strings.TrimSpace(r.Name))
		if code == "" || name == "" {
			continue
		}
		if _, dup := p.RegionByCode[code]; dup {
			return nil, fmt.Errorf("rulepack: duplicate region code %q", code)
		}
		row := Region{Code: code, Name: name}
		p.Regions = append(p.Regions, row)
		p.RegionByCode[code] = row
	}

	for _, m := range rp.Calendar.Months {
		if m.Number < 1 || m.Number > 12 {
			return nil, fmt.Errorf("rulepack: month %q has number %d", m.Name, m.Number)
		}
		mo := time.Month(m.Number)
		for _, nm := range append([]string{m.Name}, m.Aliases...) {
			nm = strings.ToLower(strings.TrimSpace(nm))
			if nm != "" {
				p.MonthByName[nm] = mo
			}
		}
	}

	for _, w := range rp.Calendar.Weekdays {
		if w.Number < 0 || w.Number > 6 {
			return nil, fmt.Errorf("rulepack: weekday %q has number %d", w.Name, w.Number)
		}
		wd := time.Weekday(w.Number)
		for _, nm := range append([]string{w.Name}, w.Aliases...) {
			nm = strings.ToLower(strings.TrimSpace(nm))
			if nm != "" {
				p.WeekdayByName[nm] = wd
			}
		}
	}

	for _, r := range rp.Calendar.Relative {
		phrase := strings.ToLower(strings.TrimSpace(r.Phrase))
		if phrase != "" {
			p.Relatives[phrase] = r.Seconds
		}
	}

	for _, z := range rp.Zones {
		abbr := strings.ToLower(strings.TrimSpace(z.Abbr))
		if abbr == "" || strings.TrimSpace(z.Name) == "" {
			continue
		}
		p.ZoneByAbbr[abbr] = Zone{Abbr: abbr, Name: z.Name, OffsetSeconds: z.OffsetSeconds}
	}

	p.flatSlots = p.buildSlots()

	// Compile templates: expand {SLOT} with regex-quoted table values.
	// Case-insensitive templates get an (?i) prefix; case-sensitive ones
	// (airline codes) compile as written
	for _, t := range rp.Templates {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, fmt.Errorf("rulepack: template without id (pattern %q)", t.Pattern)
		}
		if _, dup := p.byID[id]; dup {
			return nil, fmt.Errorf("rulepack: duplicate template id %q", id)
		}
		exp, err := expandSlots(t.Pattern, p.flatSlots)
		if err != nil {
			return nil, fmt.Errorf("rulepack: expand %q: %w", id, err)
		}
		src := exp
		if !t.CaseSensitive {
			src = "(?i)" + exp
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("rulepack: compile %q: %w", id, err)
		}
		p.byID[id] = len(p.Templates)
		p.Templates = append(p.Templates, Template{
			ID:              id,
			Category:        strings.TrimSpace(t.Category),
			PatternExpanded: exp,
			CaseSensitive:   t.CaseSensitive,
		})
		p.Compiled = append(p.Compiled, re)
	}

	// Deterministic iteration for tests/debug
	sort.Slice(p.Airlines, func(i, j int) bool { return p.Airlines[i].Code < p.Airlines[j].Code })
	sort.Slice(p.Regions, func(i, j int) bool { return p.Regions[i].Code < p.Regions[j].Code })

	return p, nil
}

// Template returns the compiled regex for a template id
func (p *Pack) Template(id string) (*regexp.Regexp, bool) {
	i, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return p.Compiled[i], true
}

// TemplateMeta returns the template row for an id
func (p *Pack) TemplateMeta(id string) (Template, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Template{}, false
	}
	return p.Templates[i], true
}

// buildSlots flattens the tables into slot value lists for expansion
func (p *Pack) buildSlots() map[string][]string {
	slots := make(map[string][]string, 9)

	var codes []string
	for _, a := range p.Airlines {
		codes = append(codes, a.Code)
	}
	slots["AIRLINE_CODE"] = codes

	slots["TLD"] = setValues(p.TLDs)
	slots["STREET_SUFFIX"] = setValues(p.StreetSuffixes)
	slots["UNIT"] = setValues(p.UnitLabels)
	slots["DIRECTIONAL"] = setValues(p.Directionals)

	var regions []string
	for _, r := range p.Regions {
		regions = append(regions, r.Code)
	}
	slots["REGION_CODE"] = regions

	months := make([]string, 0, len(p.MonthByName))
	for nm := range p.MonthByName {
		months = append(months, nm)
	}
	slots["MONTH"] = months

	weekdays := make([]string, 0, len(p.WeekdayByName))
	for nm := range p.WeekdayByName {
		weekdays = append(weekdays, nm)
	}
	slots["WEEKDAY"] = weekdays

	relatives := make([]string, 0, len(p.Relatives))
	for ph := range p.Relatives {
		relatives = append(relatives, ph)
	}
	slots["RELATIVE"] = relatives

	zones := make([]string, 0, len(p.ZoneByAbbr))
	for ab := range p.ZoneByAbbr {
		zones = append(zones, ab)
	}
	slots["TZ"] = zones

	return slots
}

// expandSlots replaces {NAME} with a non-capturing group of OR'ed,
// regex-quoted values. Only uppercase names are slots; braces that spell
// regex quantifiers like {4} or {2,4} pass through untouched. Values sort
// longest first so multiword phrases beat their prefixes under
// leftmost-first alternation. An unknown uppercase {NAME} errors: a
// template referencing a missing table is a packaging bug
func expandSlots(pattern string, flatSlots map[string][]string) (string, error) {
	out := pattern
	for i := 0; ; {
		k := strings.Index(out[i:], "{")
		if k < 0 {
			break
		}
		i += k
		j := strings.Index(out[i:], "}")
		if j < 0 {
			// unclosed brace belongs to the regex; the compile step judges it
			break
		}
		j += i
		name := out[i+1 : j]
		if !isSlotName(name) {
			i++
			continue
		}

		values, ok := flatSlots[name]
		if !ok || len(values) == 0 {
			return "", fmt.Errorf("unknown slot {%s}", name)
		}

		sorted := make([]string, len(values))
		copy(sorted, values)
		sort.Slice(sorted, func(a, b int) bool {
			if len(sorted[a]) != len(sorted[b]) {
				return len(sorted[a]) > len(sorted[b])
			}
			return sorted[a] < sorted[b]
		})

		parts := make([]string, 0, len(sorted))
		for _, v := range sorted {
			parts = append(parts, regexp.QuoteMeta(v))
		}
		// Non-capturing so templates own their group numbering
		group := "(?:" + strings.Join(parts, "|") + ")"
		out = out[:i] + group + out[j+1:]
		i += len(group)
	}
	return out, nil
}

// isSlotName reports whether s names a vocabulary slot: non-empty,
// uppercase letters and underscores only
func isSlotName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func setValues(in map[string]struct{}) []string {
	out := make([]string, 0, len(in))
	for s := range in {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
