package rulepack

import (
	"regexp"
	"testing"
	"time"
)

func TestLoadAndCompile(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("expected version 1, got %d", p.Version)
	}
	if len(p.Templates) == 0 || len(p.Compiled) == 0 {
		t.Fatalf("expected compiled templates")
	}
	for i, tmpl := range p.Templates {
		if p.Compiled[i] == nil {
			t.Fatalf("nil compiled regexp at %d (%s)", i, tmpl.ID)
		}
		if tmpl.Category == "" {
			t.Fatalf("template %s missing category", tmpl.ID)
		}
	}
}

func TestTimeRangeSeparators(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	re, ok := p.Template("time_range")
	if !ok {
		t.Fatalf("time_range template missing")
	}
	for _, s := range []string{"3pm-5pm", "3pm–5pm", "3pm to 5pm", "9:30am until 11am"} {
		if !re.MatchString(s) {
			t.Errorf("time_range should match %q", s)
		}
	}
}

func TestLoad_Tables(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if a, ok := p.AirlineByCode["AA"]; !ok || a.Name != "American Airlines" {
		t.Fatalf("airline AA missing or wrong: %+v", a)
	}
	if _, ok := p.AirlineByName["united airlines"]; !ok {
		t.Fatalf("airline name index missing united airlines")
	}
	if _, ok := p.TLDs["com"]; !ok {
		t.Fatalf("tld allowlist missing com")
	}
	if _, ok := p.StreetSuffixes["avenue"]; !ok {
		t.Fatalf("street suffixes missing avenue")
	}
	if r, ok := p.RegionByCode["CA"]; !ok || r.Name != "california" {
		t.Fatalf("region CA missing or wrong: %+v", r)
	}
	if p.MonthByName["jan"] != time.January || p.MonthByName["december"] != time.December {
		t.Fatalf("month lookup broken: jan=%v december=%v", p.MonthByName["jan"], p.MonthByName["december"])
	}
	if p.WeekdayByName["mon"] != time.Monday {
		t.Fatalf("weekday lookup broken: mon=%v", p.WeekdayByName["mon"])
	}
	if secs, ok := p.Relatives["tomorrow"]; !ok || secs != 86400 {
		t.Fatalf("relative phrase tomorrow => %d, %v", secs, ok)
	}
	z, ok := p.ZoneByAbbr["pst"]
	if !ok || z.Name != "America/Los_Angeles" || z.OffsetSeconds != -28800 {
		t.Fatalf("zone pst wrong: %+v", z)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad version": `{"version":2,"airlines":[{"code":"AA","name":"Alpha"}],
			"tlds":["com"],"calendar":{"months":[{"name":"january","number":1}]}}`,
		"missing tables": `{"version":1,"airlines":[],"tlds":[],"calendar":{"months":[]}}`,
		"duplicate airline code": `{"version":1,
			"airlines":[{"code":"AA","name":"Alpha"},{"code":"aa","name":"Beta"}],
			"tlds":["com"],"calendar":{"months":[{"name":"january","number":1}]}}`,
		"duplicate region code": `{"version":1,
			"airlines":[{"code":"AA","name":"Alpha"}],"tlds":["com"],
			"regions":[{"code":"CA","name":"California"},{"code":"ca","name":"Canada"}],
			"calendar":{"months":[{"name":"january","number":1}]}}`,
		"month out of range": `{"version":1,"airlines":[{"code":"AA","name":"Alpha"}],
			"tlds":["com"],"calendar":{"months":[{"name":"smarch","number":13}]}}`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: Parse accepted bad input", name)
		}
	}
}

func TestTemplateLookup(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	re, ok := p.Template("date_iso")
	if !ok || re == nil {
		t.Fatalf("date_iso template missing")
	}
	if !re.MatchString("2024-01-01") {
		t.Fatalf("date_iso should match 2024-01-01")
	}

	if _, ok := p.Template("nope"); ok {
		t.Fatalf("unknown template id should miss")
	}

	meta, ok := p.TemplateMeta("flight_code")
	if !ok || !meta.CaseSensitive {
		t.Fatalf("flight_code should be case sensitive: %+v", meta)
	}
}

func TestCaseFolding(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	// insensitive templates match any case
	re, _ := p.Template("date_month_day")
	if !re.MatchString("January 5, 2024") || !re.MatchString("JANUARY 5, 2024") {
		t.Fatalf("date_month_day should be case insensitive")
	}

	// flight codes stay uppercase only
	fc, _ := p.Template("flight_code")
	if !fc.MatchString("UA 2402") {
		t.Fatalf("flight_code should match UA 2402")
	}
	if fc.MatchString("ua 2402") {
		t.Fatalf("flight_code must not match lowercase codes")
	}
}

func TestExpandSlots(t *testing.T) {
	flat := map[string][]string{
		"WHO": {"next", "next week"},
	}
	exp, err := expandSlots(`hello ({WHO})`, flat)
	if err != nil {
		t.Fatalf("expand err: %v", err)
	}
	// longest-first so "next week" beats "next" under leftmost-first alternation
	if exp != `hello ((?:next week|next))` {
		t.Fatalf("unexpected expansion: %q", exp)
	}
	re := regexp.MustCompile(exp)
	m := re.FindStringSubmatch("hello next week")
	if len(m) != 2 || m[1] != "next week" {
		t.Fatalf("multiword phrase should win: %#v", m)
	}
}

func TestExpandSlots_Errors(t *testing.T) {
	if _, err := expandSlots("x {MISSING} y", map[string][]string{}); err == nil {
		t.Fatalf("unknown slot should error")
	}
}

func TestExpandSlots_LeavesQuantifiersAlone(t *testing.T) {
	flat := map[string][]string{"MONTH": {"jan"}}
	exp, err := expandSlots(`\d{4}-{MONTH} {2,3}x`, flat)
	if err != nil {
		t.Fatalf("expand err: %v", err)
	}
	if exp != `\d{4}-(?:jan) {2,3}x` {
		t.Fatalf("unexpected expansion: %q", exp)
	}
	if !regexp.MustCompile(exp).MatchString("2024-jan   x") {
		t.Fatalf("expanded pattern should still match: %q", exp)
	}

	// an unclosed brace is the regex's business, not a slot error
	if got, err := expandSlots("x {OPEN", nil); err != nil || got != "x {OPEN" {
		t.Fatalf("unclosed brace: %q, %v", got, err)
	}
}

func TestExpandSlots_QuotesMetaChars(t *testing.T) {
	flat := map[string][]string{"ORG": {"a.b", "c+d"}}
	exp, err := expandSlots(`({ORG})`, flat)
	if err != nil {
		t.Fatalf("expand err: %v", err)
	}
	re := regexp.MustCompile(exp)
	if !re.MatchString("a.b") || re.MatchString("axb") {
		t.Fatalf("meta chars must be quoted: %q", exp)
	}
	if !re.MatchString("c+d") {
		t.Fatalf("plus must be literal: %q", exp)
	}
}
