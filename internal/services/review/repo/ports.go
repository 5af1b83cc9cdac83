package repo

import (
	"context"
	"time"

	"marginalia/internal/services/review/domain"
)

// Repo is the review queue persistence surface used by the service layer
type Repo interface {
	// EnqueueReview inserts or re-queues a review and returns its id
	EnqueueReview(ctx context.Context, annotationID, reason string) (string, error)

	// LeaseReviews claims up to limit due jobs for workerID
	LeaseReviews(ctx context.Context, workerID string, limit int, leaseFor time.Duration) ([]domain.ReviewJob, error)

	// CompleteReview records a verdict and releases the lease
	CompleteReview(ctx context.Context, id, verdict string, detver int) error

	// RequeueReview schedules a retry after a transient failure
	RequeueReview(ctx context.Context, id, lastErr string, nextAttemptAt time.Time) error

	// FailReview settles a job as error once attempts run out
	FailReview(ctx context.Context, id, lastErr string) error

	// ReviewByID fetches one job
	ReviewByID(ctx context.Context, id string) (domain.ReviewJob, error)
}
