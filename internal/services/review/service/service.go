// Package service implements the review queue and its verifier worker
package service

import (
	"context"
	"strings"
	"time"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/resolve"
	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
	dom "marginalia/internal/services/review/domain"
	rrepo "marginalia/internal/services/review/repo"
)

// Service implements the enqueue, status, and worker ports
type Service interface {
	dom.EnqueuePort
	dom.StatusPort
	dom.WorkerPort
}

// Config controls the worker loop and the verdict check
type Config struct {
	Concurrency    int
	QueueTakeBatch int
	LeaseFor       time.Duration
	RetryBase      time.Duration
	MaxAttempts    int
	Detver         int
	Kinds          []checking.Checking
}

// Svc implements Service
type Svc struct {
	repo rrepo.Repo

	docs docdom.ReaderPort
	anns anndom.QueryPort
	mark anndom.WriterPort
	res  *resolve.Resolver
	cfg  Config
}

// New constructs the review service
func New(
	db repokit.TxRunner,
	docs docdom.ReaderPort,
	anns anndom.QueryPort,
	mark anndom.WriterPort,
	res *resolve.Resolver,
	cfg Config,
) *Svc {
	if db == nil {
		panic("review.Service requires a non nil TxRunner")
	}
	if docs == nil || anns == nil || mark == nil {
		panic("review.Service requires documents and annotations ports")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.QueueTakeBatch <= 0 {
		cfg.QueueTakeBatch = 32
	}
	if cfg.LeaseFor <= 0 {
		cfg.LeaseFor = time.Minute
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = checking.DefaultKinds()
	}
	return &Svc{
		repo: rrepo.NewPG().Bind(db),
		docs: docs,
		anns: anns,
		mark: mark,
		res:  res,
		cfg:  cfg,
	}
}

// EnqueueReview records a review request for an existing annotation.
// Enqueuing is idempotent per annotation and reason, so resubmitting an
// in-flight review returns the same job instead of queuing a duplicate
func (s *Svc) EnqueueReview(ctx context.Context, in dom.EnqueueArgs) (dom.ReviewJob, error) {
	annID := strings.TrimSpace(in.AnnotationID)
	reason := strings.TrimSpace(in.Reason)
	if annID == "" || reason == "" {
		return dom.ReviewJob{}, perr.InvalidArgf("annotation_id and reason are required")
	}

	// Reject unknown annotations up front instead of settling them as
	// orphaned later
	if _, err := s.anns.ByID(ctx, annID); err != nil {
		return dom.ReviewJob{}, err
	}

	id, err := s.repo.EnqueueReview(ctx, annID, reason)
	if err != nil {
		return dom.ReviewJob{}, err
	}
	return s.repo.ReviewByID(ctx, id)
}

// ReviewByID reports current job state
func (s *Svc) ReviewByID(ctx context.Context, id string) (dom.ReviewJob, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dom.ReviewJob{}, perr.InvalidArgf("review_id is required")
	}
	return s.repo.ReviewByID(ctx, id)
}
