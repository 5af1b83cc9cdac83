package resolve

import (
	"reflect"
	"testing"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
	"marginalia/internal/core/rulepack"
)

func mustResolver(t *testing.T) *Resolver {
	t.Helper()
	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	d, err := detector.New(p)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	return New(d)
}

func TestResolve_EmptyKinds(t *testing.T) {
	r := mustResolver(t)
	if m := r.Resolve(Text{Body: "Call me at 555-1234"}, nil); m.Len() != 0 {
		t.Fatalf("expected empty map, got %+v", m.Entries())
	}
	if m := r.Resolve(Text{Body: "Call me at 555-1234"}, []checking.Checking{}); m.Len() != 0 {
		t.Fatalf("expected empty map for empty slice, got %+v", m.Entries())
	}
}

func TestResolve_EmptyBody(t *testing.T) {
	r := mustResolver(t)
	if m := r.Resolve(Text{}, checking.DefaultKinds()); m.Len() != 0 {
		t.Fatalf("expected empty map, got %+v", m.Entries())
	}
}

func TestResolve_PhoneAndLink(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "Call me at 555-1234 or visit example.com"}
	m := r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.Link()})
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %+v", m.Entries())
	}
	es := m.Entries()

	if es[0].Span != (checking.Span{Start: 11, End: 19}) {
		t.Fatalf("phone span %+v", es[0].Span)
	}
	if es[0].Checking != checking.PhoneNumber() {
		t.Fatalf("first entry kind %v", es[0].Checking)
	}
	pr, ok := es[0].Result.(PhoneResult)
	if !ok || pr.Number != "5551234" {
		t.Fatalf("phone result %+v", es[0].Result)
	}

	if es[1].Span != (checking.Span{Start: 29, End: 40}) {
		t.Fatalf("link span %+v", es[1].Span)
	}
	lr, ok := es[1].Result.(LinkResult)
	if !ok || lr.URL != "https://example.com" {
		t.Fatalf("link result %+v", es[1].Result)
	}
}

func TestResolve_RegexWinsOverDate(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "Meet at 5pm on 2024-01-01"}
	m := r.Resolve(text, []checking.Checking{
		checking.Regex(`\d{4}-\d{2}-\d{2}`),
		checking.Date(),
	})
	if m.Len() != 1 {
		t.Fatalf("expected exactly 1 entry, got %+v", m.Entries())
	}
	e := m.Entries()[0]
	if e.Span != (checking.Span{Start: 15, End: 25}) {
		t.Fatalf("span %+v", e.Span)
	}
	if e.Checking.Kind() != checking.KindRegex {
		t.Fatalf("kind %v, want regex", e.Checking)
	}
	rr, ok := e.Result.(RegexResult)
	if !ok || rr.Text != "2024-01-01" {
		t.Fatalf("result %+v", e.Result)
	}
}

func TestResolve_ExplicitRangeWinsOverDate(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "Meet at 5pm on 2024-01-01"}
	span := checking.Span{Start: 8, End: 25}
	m := r.Resolve(text, []checking.Checking{checking.Range(span), checking.Date()})
	if m.Len() != 1 {
		t.Fatalf("expected exactly 1 entry, got %+v", m.Entries())
	}
	e := m.Entries()[0]
	if e.Span != span || e.Checking.Kind() != checking.KindRange {
		t.Fatalf("entry %+v", e)
	}
	rr, ok := e.Result.(RangeResult)
	if !ok || rr.Text != "5pm on 2024-01-01" {
		t.Fatalf("result %+v", e.Result)
	}
}

func TestResolve_InvalidRegexDoesNotSuppressDate(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "ship on 2024-01-01 please"}
	m := r.Resolve(text, []checking.Checking{checking.Regex("(["), checking.Date()})
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %+v", m.Entries())
	}
	e := m.Entries()[0]
	if e.Checking.Kind() != checking.KindDate {
		t.Fatalf("kind %v, want date", e.Checking)
	}
	dr, ok := e.Result.(DateResult)
	if !ok || dr.When == nil {
		t.Fatalf("result %+v", e.Result)
	}
}

func TestResolve_DuplicateKindsCollapse(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "Call me at 555-1234 or visit example.com"}
	a := r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.PhoneNumber(), checking.Link()})
	b := r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.Link()})
	if !reflect.DeepEqual(a.Entries(), b.Entries()) {
		t.Fatalf("duplicate kind changed output:\n%+v\nvs\n%+v", a.Entries(), b.Entries())
	}
}

func busyText() Text {
	return Text{
		Body: "Jane Doe, Senior Engineer, Acme Inc., 123 Main Street, Springfield, IL 62704, USA, " +
			"phone: 555-123-4567, see www.example.com on 2024-01-01 at 5pm PST, " +
			"or call +14155550123 about flight UA 2402",
		Markers: []Marker{
			{Span: checking.Span{Start: 10, End: 18}, Payload: "hl:title"},
		},
	}
}

func busyKinds() []checking.Checking {
	kinds := []checking.Checking{
		checking.Range(checking.Span{Start: 0, End: 8}),
		checking.Regex(`\d{4}`),
		checking.Action(),
	}
	return append(kinds, checking.DefaultKinds()...)
}

func TestResolve_NoOverlapInvariant(t *testing.T) {
	r := mustResolver(t)
	m := r.Resolve(busyText(), busyKinds())
	if m.Len() < 4 {
		t.Fatalf("expected a busy map, got %+v", m.Entries())
	}
	es := m.Entries()
	for i := 1; i < len(es); i++ {
		if es[i-1].Span.End > es[i].Span.Start {
			t.Fatalf("entries %d and %d overlap: %+v %+v", i-1, i, es[i-1].Span, es[i].Span)
		}
	}
	for _, e := range es {
		if e.Result.Kind() != e.Checking.Kind() {
			t.Fatalf("result kind %v disagrees with checking %v", e.Result.Kind(), e.Checking)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := mustResolver(t)
	a := r.Resolve(busyText(), busyKinds())
	b := r.Resolve(busyText(), busyKinds())
	if !reflect.DeepEqual(a.Entries(), b.Entries()) {
		t.Fatalf("same input produced different maps:\n%+v\nvs\n%+v", a.Entries(), b.Entries())
	}
}

func TestResolve_ActionMarkersAdopted(t *testing.T) {
	r := mustResolver(t)
	text := Text{
		Body: "see the attached note",
		Markers: []Marker{
			{Span: checking.Span{Start: 4, End: 7}, Payload: "todo:review"},
			{Span: checking.Span{Start: 50, End: 60}, Payload: "out-of-range"},
		},
	}
	m := r.Resolve(text, []checking.Checking{checking.Action()})
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %+v", m.Entries())
	}
	e := m.Entries()[0]
	if e.Span != (checking.Span{Start: 4, End: 7}) {
		t.Fatalf("span %+v", e.Span)
	}
	ar, ok := e.Result.(ActionResult)
	if !ok || ar.Payload != "todo:review" {
		t.Fatalf("result %+v", e.Result)
	}
}

func TestResolve_RegexBeatsAction(t *testing.T) {
	r := mustResolver(t)
	text := Text{
		Body: "abc def",
		Markers: []Marker{
			{Span: checking.Span{Start: 0, End: 3}, Payload: "m1"},
			{Span: checking.Span{Start: 4, End: 7}, Payload: "m2"},
		},
	}
	m := r.Resolve(text, []checking.Checking{checking.Action(), checking.Regex("abc")})
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %+v", m.Entries())
	}
	es := m.Entries()
	if es[0].Checking.Kind() != checking.KindRegex {
		t.Fatalf("overlapped span kept %v, want regex", es[0].Checking)
	}
	if es[1].Checking.Kind() != checking.KindAction {
		t.Fatalf("second entry %v, want action", es[1].Checking)
	}
}

func TestResolve_FirstRequestedWinsExactDuplicate(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "foobar"}
	first := checking.Regex("foo")
	m := r.Resolve(text, []checking.Checking{first, checking.Regex("fo+")})
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %+v", m.Entries())
	}
	e := m.Entries()[0]
	if e.Checking != first {
		t.Fatalf("kept %v, want the first requested pattern", e.Checking)
	}
}

func TestResolve_ContentRequestOrderDecidesOverlap(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "reach us: 123 Main Street, Springfield, IL 62704, phone: 555-123-4567"}

	m := r.Resolve(text, []checking.Checking{checking.Address(), checking.PhoneNumber()})
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %+v", m.Entries())
	}
	ar, ok := m.Entries()[0].Result.(AddressResult)
	if !ok {
		t.Fatalf("result %+v, want address", m.Entries()[0].Result)
	}
	if ar.Phone == nil || *ar.Phone != "5551234567" {
		t.Fatalf("address phone %+v", ar.Phone)
	}

	m = r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.Address()})
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %+v", m.Entries())
	}
	if _, ok := m.Entries()[0].Result.(PhoneResult); !ok {
		t.Fatalf("result %+v, want phone", m.Entries()[0].Result)
	}
}

func TestResolve_NilDetectorContentEmpty(t *testing.T) {
	r := New(nil)
	text := Text{Body: "Call me at 555-1234 or visit example.com"}
	if m := r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.Link()}); m.Len() != 0 {
		t.Fatalf("nil detector produced entries: %+v", m.Entries())
	}
	m := r.Resolve(text, []checking.Checking{checking.Range(checking.Span{Start: 0, End: 4})})
	if m.Len() != 1 {
		t.Fatalf("range kind should not need the detector, got %+v", m.Entries())
	}
}

func TestResolve_ZeroWidthRegexSkipped(t *testing.T) {
	r := mustResolver(t)
	if m := r.Resolve(Text{Body: "abc"}, []checking.Checking{checking.Regex("x*")}); m.Len() != 0 {
		t.Fatalf("zero-width matches should be dropped, got %+v", m.Entries())
	}
}

func TestResolve_InvalidRangeIgnored(t *testing.T) {
	r := mustResolver(t)
	kinds := []checking.Checking{
		checking.Range(checking.Span{Start: 2, End: 99}),
		checking.Range(checking.Span{Start: 3, End: 3}),
	}
	if m := r.Resolve(Text{Body: "short"}, kinds); m.Len() != 0 {
		t.Fatalf("invalid ranges accepted: %+v", m.Entries())
	}
}

func TestMap_Get(t *testing.T) {
	r := mustResolver(t)
	text := Text{Body: "Call me at 555-1234 or visit example.com"}
	m := r.Resolve(text, []checking.Checking{checking.PhoneNumber(), checking.Link()})

	e, ok := m.Get(checking.Span{Start: 11, End: 19})
	if !ok || e.Checking != checking.PhoneNumber() {
		t.Fatalf("get known span: %+v %v", e, ok)
	}
	if _, ok := m.Get(checking.Span{Start: 11, End: 18}); ok {
		t.Fatalf("near-miss span should not resolve")
	}
}

func TestClassifierRoundTrip(t *testing.T) {
	for _, k := range checking.DefaultKinds() {
		cat, ok := kindCategory(k.Kind())
		if !ok {
			t.Fatalf("kind %v has no category", k)
		}
		back, ok := categoryKind(cat)
		if !ok || back != k.Kind() {
			t.Fatalf("category %v maps back to %v, want %v", cat, back, k.Kind())
		}
	}
	if _, ok := categoryKind(detector.Category("orthography")); ok {
		t.Fatalf("unknown category should not classify")
	}
}
