package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
	"marginalia/internal/core/resolve"
	"marginalia/internal/core/rulepack"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
)

func testResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	d, err := detector.New(p)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	return resolve.New(d)
}

// fakeDocs pages out pre-canned documents; List and Pending share the pages
type fakeDocs struct {
	pages [][]docdom.Document
	calls int
}

func (f *fakeDocs) ByID(context.Context, string) (docdom.Document, error) {
	return docdom.Document{}, errors.New("not used")
}

func (f *fakeDocs) page() ([]docdom.Document, docdom.AfterKey, error) {
	if f.calls >= len(f.pages) {
		return nil, docdom.AfterKey{}, nil
	}
	p := f.pages[f.calls]
	f.calls++
	var next docdom.AfterKey
	if len(p) > 0 {
		last := p[len(p)-1]
		next = docdom.AfterKey{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return p, next, nil
}

func (f *fakeDocs) List(context.Context, docdom.ListInput) ([]docdom.Document, docdom.AfterKey, error) {
	return f.page()
}

func (f *fakeDocs) Pending(context.Context, docdom.PendingInput) ([]docdom.Document, docdom.AfterKey, error) {
	return f.page()
}

type fakeStamper struct {
	ids    []string
	detver int
}

func (f *fakeStamper) Write(context.Context, docdom.WriteInput) (string, bool, error) {
	return "", false, errors.New("not used")
}

func (f *fakeStamper) MarkAnnotated(_ context.Context, ids []string, detver int) error {
	f.ids = append(f.ids, ids...)
	f.detver = detver
	return nil
}

type fakeAnnWriter struct {
	batches [][]anndom.Annotation
	fail    func(xs []anndom.Annotation) error
}

func (f *fakeAnnWriter) WriteBatch(_ context.Context, xs []anndom.Annotation) error {
	if f.fail != nil {
		if err := f.fail(xs); err != nil {
			return err
		}
	}
	cp := make([]anndom.Annotation, len(xs))
	copy(cp, xs)
	f.batches = append(f.batches, cp)
	return nil
}

func (f *fakeAnnWriter) MarkStale(context.Context, []string) error { return nil }

func (f *fakeAnnWriter) flat() []anndom.Annotation {
	var out []anndom.Annotation
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func testDoc() docdom.Document {
	return docdom.Document{
		ID:        "d1",
		SourceID:  "s1",
		Body:      "Call me at 555-1234 or visit example.com",
		CreatedAt: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
	}
}

func TestRunRange_AnnotatesAndStamps(t *testing.T) {
	docs := &fakeDocs{pages: [][]docdom.Document{{testDoc()}}}
	stamp := &fakeStamper{}
	anns := &fakeAnnWriter{}
	svc := New(docs, stamp, anns, testResolver(t), Config{
		Detver: 7,
		Kinds:  []checking.Checking{checking.PhoneNumber(), checking.Link()},
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	if err := svc.RunRange(context.Background(), start, end); err != nil {
		t.Fatalf("run range: %v", err)
	}

	rows := anns.flat()
	if len(rows) != 2 {
		t.Fatalf("annotations = %+v", rows)
	}
	if rows[0].Kind != "phone_number" || rows[1].Kind != "link" {
		t.Fatalf("kinds = %q, %q", rows[0].Kind, rows[1].Kind)
	}
	for _, a := range rows {
		if a.DocumentID != "d1" || a.SourceID != "s1" || a.Detver != 7 || a.Status != "active" {
			t.Fatalf("row %+v", a)
		}
	}
	if !bytes.Contains(rows[0].Payload, []byte(`"number":"5551234"`)) {
		t.Fatalf("phone payload = %s", rows[0].Payload)
	}
	if !bytes.Contains(rows[1].Payload, []byte(`"url":"https://example.com"`)) {
		t.Fatalf("link payload = %s", rows[1].Payload)
	}

	if len(stamp.ids) != 1 || stamp.ids[0] != "d1" || stamp.detver != 7 {
		t.Fatalf("stamped %v at detver %d", stamp.ids, stamp.detver)
	}
}

func TestRunRange_DryRunWritesNothing(t *testing.T) {
	docs := &fakeDocs{pages: [][]docdom.Document{{testDoc()}}}
	stamp := &fakeStamper{}
	anns := &fakeAnnWriter{}
	svc := New(docs, stamp, anns, testResolver(t), Config{
		Detver: 7,
		DryRun: true,
		Kinds:  []checking.Checking{checking.PhoneNumber(), checking.Link()},
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	if err := svc.RunRange(context.Background(), start, end); err != nil {
		t.Fatalf("run range: %v", err)
	}
	if len(anns.batches) != 0 {
		t.Fatalf("dry run wrote %+v", anns.batches)
	}
	if len(stamp.ids) != 0 {
		t.Fatalf("dry run stamped %v", stamp.ids)
	}
}

func TestRunRange_RejectsInvertedAndOversizedWindows(t *testing.T) {
	svc := New(&fakeDocs{}, &fakeStamper{}, &fakeAnnWriter{}, testResolver(t), Config{MaxRangeHours: 24})

	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.RunRange(context.Background(), end.Add(time.Hour), end); err == nil {
		t.Fatalf("inverted window accepted")
	}
	if err := svc.RunRange(context.Background(), end, end.Add(48*time.Hour)); err == nil {
		t.Fatalf("oversized window accepted")
	}
}

func TestRunResume_DrainsPending(t *testing.T) {
	docs := &fakeDocs{pages: [][]docdom.Document{{testDoc()}}}
	stamp := &fakeStamper{}
	anns := &fakeAnnWriter{}
	svc := New(docs, stamp, anns, testResolver(t), Config{Detver: 3, Kinds: []checking.Checking{checking.Link()}})

	if err := svc.RunResume(context.Background()); err != nil {
		t.Fatalf("run resume: %v", err)
	}
	rows := anns.flat()
	if len(rows) != 1 || rows[0].Kind != "link" {
		t.Fatalf("annotations = %+v", rows)
	}
	if len(stamp.ids) != 1 || stamp.detver != 3 {
		t.Fatalf("stamped %v at detver %d", stamp.ids, stamp.detver)
	}
}

func TestWriteRobust_NonRetryableFailsFast(t *testing.T) {
	docs := &fakeDocs{pages: [][]docdom.Document{{testDoc()}}}
	calls := 0
	anns := &fakeAnnWriter{fail: func([]anndom.Annotation) error {
		calls++
		return errors.New("column does not exist")
	}}
	svc := New(docs, &fakeStamper{}, anns, testResolver(t), Config{
		Detver: 1,
		Kinds:  []checking.Checking{checking.PhoneNumber(), checking.Link()},
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.RunRange(context.Background(), start, start.Add(24*time.Hour)); err == nil {
		t.Fatalf("write failure should surface")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error retried %d times", calls)
	}
}

func TestWriteRobust_BisectsRetryableBatches(t *testing.T) {
	docs := &fakeDocs{pages: [][]docdom.Document{{testDoc()}}}
	anns := &fakeAnnWriter{fail: func(xs []anndom.Annotation) error {
		if len(xs) > 1 {
			return errors.New("deadlock detected")
		}
		return nil
	}}
	svc := New(docs, &fakeStamper{}, anns, testResolver(t), Config{
		Detver:    1,
		RetryBase: time.Millisecond,
		Kinds:     []checking.Checking{checking.PhoneNumber(), checking.Link()},
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.RunRange(context.Background(), start, start.Add(24*time.Hour)); err != nil {
		t.Fatalf("bisected write should succeed: %v", err)
	}
	rows := anns.flat()
	if len(rows) != 2 {
		t.Fatalf("annotations = %+v", rows)
	}
	for _, b := range anns.batches {
		if len(b) != 1 {
			t.Fatalf("accepted batch size %d, want singles after bisect", len(b))
		}
	}
}
