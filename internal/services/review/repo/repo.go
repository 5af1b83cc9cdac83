// Package repo provides the Postgres-backed review queue repository
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	ptime "marginalia/internal/platform/time"
	"marginalia/internal/services/review/domain"
)

// PG binds review queries to a Queryer
type PG struct{}

// NewPG returns a Binder that yields a Repo bound to the given Queryer
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

// EnqueueReview implements Repo.
// The unique (annotation_id, reason_md5) pair makes resubmission idempotent;
// a review that already errored is re-queued fresh, settled verdicts stay put
func (r *queries) EnqueueReview(ctx context.Context, annotationID, reason string) (string, error) {
	const q = `
		INSERT INTO reviews (annotation_id, reason)
		VALUES ($1::uuid, $2)
		ON CONFLICT (annotation_id, reason_md5) DO UPDATE
		   SET updated_at      = now(),
		       status          = CASE WHEN reviews.status = 'error' THEN 'pending' ELSE reviews.status END,
		       attempts        = CASE WHEN reviews.status = 'error' THEN 0 ELSE reviews.attempts END,
		       last_error      = CASE WHEN reviews.status = 'error' THEN NULL ELSE reviews.last_error END,
		       next_attempt_at = CASE WHEN reviews.status = 'error' THEN now() ELSE reviews.next_attempt_at END
		RETURNING id::text`

	var id string
	if err := r.q.QueryRow(ctx, q, annotationID, reason).Scan(&id); err != nil {
		// a foreign key miss means the annotation id is bogus; the mapping
		// turns that into an invalid-argument answer instead of a 500
		return "", perr.FromPostgresf(err, "enqueue review")
	}
	return id, nil
}

// LeaseReviews implements Repo.
// SKIP LOCKED keeps concurrent workers off each other's rows, and expired
// leases are reclaimable so a crashed worker does not strand its batch
func (r *queries) LeaseReviews(
	ctx context.Context,
	workerID string,
	limit int,
	leaseFor time.Duration,
) ([]domain.ReviewJob, error) {
	if workerID == "" {
		workerID = uuid.NewString()
	}
	if limit <= 0 {
		limit = 32
	}
	interval := leaseFor.String()

	const q = `
		WITH ready AS (
			SELECT id
			  FROM reviews
			 WHERE status = 'pending'
			   AND next_attempt_at <= now()
			   AND (leased_by IS NULL OR lease_expires_at <= now())
			 ORDER BY next_attempt_at ASC
			 LIMIT $1
			 FOR UPDATE SKIP LOCKED
		), claimed AS (
			UPDATE reviews v
			   SET leased_by        = $2,
			       lease_expires_at = now() + ($3)::interval,
			       updated_at       = now()
			 WHERE v.id IN (SELECT id FROM ready)
			RETURNING v.id, v.annotation_id, v.reason, v.status, v.attempts,
			          v.last_error, v.next_attempt_at, v.lease_expires_at,
			          v.leased_by, v.created_at, v.updated_at
		)
		SELECT id::text, annotation_id::text, reason, status, attempts,
		       COALESCE(last_error, ''), next_attempt_at, lease_expires_at,
		       leased_by, created_at, updated_at
		  FROM claimed
		 ORDER BY next_attempt_at ASC`

	rows, err := r.q.Query(ctx, q, limit, workerID, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewJob
	for rows.Next() {
		var j domain.ReviewJob
		if err := rows.Scan(
			&j.ID, &j.AnnotationID, &j.Reason, &j.Status, &j.Attempts,
			&j.LastError, &j.NextAttemptAt, &j.LeaseExpires,
			&j.LeasedBy, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// CompleteReview implements Repo
func (r *queries) CompleteReview(ctx context.Context, id, verdict string, detver int) error {
	const q = `
		UPDATE reviews
		   SET status           = $2,
		       checked_detver   = $3,
		       finished_at      = now(),
		       last_error       = NULL,
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       updated_at       = now()
		 WHERE id = $1::uuid`

	_, err := r.q.Exec(ctx, q, id, verdict, detver)
	return perr.FromPostgresf(err, "complete review %s", id)
}

// RequeueReview implements Repo
func (r *queries) RequeueReview(ctx context.Context, id, lastErr string, nextAttemptAt time.Time) error {
	const q = `
		UPDATE reviews
		   SET attempts         = attempts + 1,
		       last_error       = NULLIF(LEFT($2, 500), ''),
		       next_attempt_at  = $3,
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       updated_at       = now()
		 WHERE id = $1::uuid`

	_, err := r.q.Exec(ctx, q, id, lastErr, nextAttemptAt)
	return perr.FromPostgresf(err, "requeue review %s", id)
}

// FailReview implements Repo
func (r *queries) FailReview(ctx context.Context, id, lastErr string) error {
	const q = `
		UPDATE reviews
		   SET status           = 'error',
		       attempts         = attempts + 1,
		       last_error       = NULLIF(LEFT($2, 500), ''),
		       finished_at      = now(),
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       updated_at       = now()
		 WHERE id = $1::uuid`

	_, err := r.q.Exec(ctx, q, id, lastErr)
	return perr.FromPostgresf(err, "fail review %s", id)
}

// ReviewByID implements Repo
func (r *queries) ReviewByID(ctx context.Context, id string) (domain.ReviewJob, error) {
	const q = `
		SELECT id::text, annotation_id::text, reason, status, attempts,
		       COALESCE(last_error, ''), checked_detver,
		       next_attempt_at, created_at, updated_at, finished_at
		  FROM reviews
		 WHERE id = $1::uuid`

	var (
		j        domain.ReviewJob
		detver   stdsql.NullInt64
		finished stdsql.NullTime
	)
	if err := r.q.QueryRow(ctx, q, id).Scan(
		&j.ID, &j.AnnotationID, &j.Reason, &j.Status, &j.Attempts,
		&j.LastError, &detver,
		&j.NextAttemptAt, &j.CreatedAt, &j.UpdatedAt, &finished,
	); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.ReviewJob{}, perr.NotFoundf("review %s", id)
		}
		return domain.ReviewJob{}, err
	}
	if detver.Valid {
		v := int(detver.Int64)
		j.CheckedDetver = &v
	}
	j.FinishedAt = ptime.NullPtr(finished)
	return j, nil
}
