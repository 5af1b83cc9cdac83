package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/detector"
	"marginalia/internal/core/resolve"
	"marginalia/internal/core/rulepack"
	perr "marginalia/internal/platform/errors"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
	dom "marginalia/internal/services/review/domain"
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

// fakeQueue records verdict traffic in place of the PG-backed queue
type fakeQueue struct {
	jobs      map[string]dom.ReviewJob
	enqueued  []string
	completed map[string]string // job id -> verdict
	requeued  []string
	nextAt    time.Time
	failed    []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		jobs:      map[string]dom.ReviewJob{},
		completed: map[string]string{},
	}
}

func (f *fakeQueue) EnqueueReview(_ context.Context, annID, reason string) (string, error) {
	f.enqueued = append(f.enqueued, annID)
	id := "r1"
	f.jobs[id] = dom.ReviewJob{ID: id, AnnotationID: annID, Reason: reason, Status: "pending"}
	return id, nil
}

func (f *fakeQueue) LeaseReviews(context.Context, string, int, time.Duration) ([]dom.ReviewJob, error) {
	return nil, nil
}

func (f *fakeQueue) CompleteReview(_ context.Context, id, verdict string, _ int) error {
	f.completed[id] = verdict
	return nil
}

func (f *fakeQueue) RequeueReview(_ context.Context, id, _ string, nextAttemptAt time.Time) error {
	f.requeued = append(f.requeued, id)
	f.nextAt = nextAttemptAt
	return nil
}

func (f *fakeQueue) FailReview(_ context.Context, id, _ string) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeQueue) ReviewByID(_ context.Context, id string) (dom.ReviewJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return dom.ReviewJob{}, perr.NotFoundf("review %q", id)
	}
	return j, nil
}

type fakeDocReader struct {
	doc docdom.Document
	err error
}

func (f *fakeDocReader) ByID(context.Context, string) (docdom.Document, error) {
	return f.doc, f.err
}

func (f *fakeDocReader) List(context.Context, docdom.ListInput) ([]docdom.Document, docdom.AfterKey, error) {
	return nil, docdom.AfterKey{}, nil
}

func (f *fakeDocReader) Pending(context.Context, docdom.PendingInput) ([]docdom.Document, docdom.AfterKey, error) {
	return nil, docdom.AfterKey{}, nil
}

type fakeAnnQuery struct {
	ann anndom.Annotation
	err error
}

func (f *fakeAnnQuery) ListSamples(
	context.Context, anndom.Window, anndom.Filters, anndom.AfterKey, int,
) ([]anndom.Sample, anndom.AfterKey, error) {
	return nil, anndom.AfterKey{}, nil
}

func (f *fakeAnnQuery) ByDocument(context.Context, string) ([]anndom.Annotation, error) {
	return nil, nil
}

func (f *fakeAnnQuery) ByID(context.Context, string) (anndom.Annotation, error) {
	return f.ann, f.err
}

type fakeMarker struct{ stale []string }

func (f *fakeMarker) WriteBatch(context.Context, []anndom.Annotation) error { return nil }

func (f *fakeMarker) MarkStale(_ context.Context, ids []string) error {
	f.stale = append(f.stale, ids...)
	return nil
}

func testSvc(t *testing.T, q *fakeQueue, docs *fakeDocReader, anns *fakeAnnQuery, mark *fakeMarker) *Svc {
	t.Helper()
	return &Svc{
		repo: q,
		docs: docs,
		anns: anns,
		mark: mark,
		res:  testResolver(t),
		cfg: Config{
			MaxAttempts: 3,
			RetryBase:   time.Millisecond,
			Detver:      7,
			Kinds:       []checking.Checking{checking.PhoneNumber(), checking.Link()},
		},
	}
}

func phoneDoc() docdom.Document {
	// phone span is [11,19)
	return docdom.Document{ID: "d1", SourceID: "s1", Body: "Call me at 555-1234 for details"}
}

func TestHandleJob_ConfirmsLiveSpan(t *testing.T) {
	q := newFakeQueue()
	mark := &fakeMarker{}
	svc := testSvc(t, q,
		&fakeDocReader{doc: phoneDoc()},
		&fakeAnnQuery{ann: anndom.Annotation{
			ID: "a1", DocumentID: "d1", Kind: "phone_number", SpanStart: 11, SpanEnd: 19,
		}},
		mark,
	)

	if err := svc.handleJob(context.Background(), dom.ReviewJob{ID: "r1", AnnotationID: "a1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if q.completed["r1"] != "confirmed" {
		t.Fatalf("verdicts = %+v", q.completed)
	}
	if len(mark.stale) != 0 {
		t.Fatalf("confirmed review flipped annotations: %v", mark.stale)
	}
}

func TestHandleJob_FlipsStaleSpan(t *testing.T) {
	q := newFakeQueue()
	mark := &fakeMarker{}
	svc := testSvc(t, q,
		&fakeDocReader{doc: phoneDoc()},
		&fakeAnnQuery{ann: anndom.Annotation{
			// a span the current detector does not produce
			ID: "a1", DocumentID: "d1", Kind: "link", SpanStart: 0, SpanEnd: 4,
		}},
		mark,
	)

	if err := svc.handleJob(context.Background(), dom.ReviewJob{ID: "r1", AnnotationID: "a1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if q.completed["r1"] != "stale" {
		t.Fatalf("verdicts = %+v", q.completed)
	}
	if len(mark.stale) != 1 || mark.stale[0] != "a1" {
		t.Fatalf("stale flips = %v", mark.stale)
	}
}

func TestHandleJob_OrphanedAnnotation(t *testing.T) {
	q := newFakeQueue()
	svc := testSvc(t, q,
		&fakeDocReader{doc: phoneDoc()},
		&fakeAnnQuery{err: perr.NotFoundf("annotation gone")},
		&fakeMarker{},
	)

	if err := svc.handleJob(context.Background(), dom.ReviewJob{ID: "r1", AnnotationID: "a1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if q.completed["r1"] != "orphaned" {
		t.Fatalf("verdicts = %+v", q.completed)
	}
}

func TestHandleJob_TransientRequeuesThenFails(t *testing.T) {
	q := newFakeQueue()
	svc := testSvc(t, q,
		&fakeDocReader{err: errors.New("deadlock detected")},
		&fakeAnnQuery{ann: anndom.Annotation{ID: "a1", DocumentID: "d1", Kind: "phone_number"}},
		&fakeMarker{},
	)

	// first attempt requeues with a future next_attempt_at
	if err := svc.handleJob(context.Background(), dom.ReviewJob{ID: "r1", AnnotationID: "a1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(q.requeued) != 1 || !q.nextAt.After(time.Now().UTC().Add(-time.Second)) {
		t.Fatalf("requeued = %v at %v", q.requeued, q.nextAt)
	}

	// the last allowed attempt settles the job as error
	if err := svc.handleJob(context.Background(), dom.ReviewJob{ID: "r1", AnnotationID: "a1", Attempts: 2}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(q.failed) != 1 || q.failed[0] != "r1" {
		t.Fatalf("failed = %v", q.failed)
	}
}

func TestEnqueueReview_Validation(t *testing.T) {
	q := newFakeQueue()
	svc := testSvc(t, q, &fakeDocReader{}, &fakeAnnQuery{}, &fakeMarker{})

	if _, err := svc.EnqueueReview(context.Background(), dom.EnqueueArgs{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty args: %v", err)
	}

	svc.anns = &fakeAnnQuery{err: perr.NotFoundf("no such annotation")}
	_, err := svc.EnqueueReview(context.Background(), dom.EnqueueArgs{AnnotationID: "a9", Reason: "looks wrong"})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown annotation: %v", err)
	}
	if len(q.enqueued) != 0 {
		t.Fatalf("rejected request still enqueued: %v", q.enqueued)
	}
}

func TestEnqueueReview_ReturnsJob(t *testing.T) {
	q := newFakeQueue()
	svc := testSvc(t, q, &fakeDocReader{}, &fakeAnnQuery{ann: anndom.Annotation{ID: "a1"}}, &fakeMarker{})

	j, err := svc.EnqueueReview(context.Background(), dom.EnqueueArgs{AnnotationID: "a1", Reason: "spot check"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if j.ID != "r1" || j.AnnotationID != "a1" || j.Status != "pending" {
		t.Fatalf("job = %+v", j)
	}

	got, err := svc.ReviewByID(context.Background(), "r1")
	if err != nil || got.ID != "r1" {
		t.Fatalf("status = %+v, %v", got, err)
	}
}
