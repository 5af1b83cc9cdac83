// Package repo provides postgres access for import job bookkeeping
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/importer/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// PreseedFiles registers archives as pending jobs (idempotent)
func (r *queries) PreseedFiles(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO import_jobs (file_name, status, enqueued_at)
		SELECT DISTINCT x, 'pending', now()
		FROM unnest($1::text[]) AS t(x)
		ON CONFLICT (file_name) DO NOTHING
	`, names)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// NextFileToProcess claims one due pending or errored job.
// SKIP LOCKED keeps concurrent workers from fighting over the same row;
// next_attempt_at keeps perma-failing archives from hot-looping a drain
func (r *queries) NextFileToProcess(ctx context.Context, names []string) (string, bool, error) {
	const claim = `
		WITH cte AS (
			SELECT file_name
			FROM import_jobs
			WHERE status IN ('pending', 'error')
			  AND next_attempt_at <= now()
			  AND ($1::text[] IS NULL OR file_name = ANY($1::text[]))
			ORDER BY next_attempt_at ASC, enqueued_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE import_jobs j
		SET status = 'running', started_at = now(), attempts = j.attempts + 1
		FROM cte
		WHERE j.file_name = cte.file_name
		RETURNING j.file_name
	`
	var name string
	if err := r.q.QueryRow(ctx, claim, names).Scan(&name); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return name, true, nil
}

// StartFile marks the start of an import job (idempotent)
func (r *queries) StartFile(ctx context.Context, name string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO import_jobs (file_name, status, enqueued_at, started_at)
		VALUES ($1, 'running', now(), now())
		ON CONFLICT (file_name) DO UPDATE
		SET started_at = now(), status = 'running', error = null, finished_at = null
	`, name)
	return err
}

// FinishFile marks the end of an import job (idempotent).
// Errored jobs are rescheduled with an attempts-scaled delay so a later
// resume retries them without spinning on the same broken archive
func (r *queries) FinishFile(ctx context.Context, name string, fin domain.FileFinish) error {
	_, err := r.q.Exec(ctx, `
		UPDATE import_jobs SET
			finished_at = now(),
			status = $2,
			cache_hit = $3,
			bytes_uncompressed = $4,
			records_scanned = $5,
			documents_extracted = $6,
			skipped = $7,
			inserted = $8,
			deduped = $9,
			fetch_ms = $10,
			read_ms = $11,
			db_ms = $12,
			elapsed_ms = $13,
			error = NULLIF($14,''),
			next_attempt_at = CASE WHEN $2 = 'error'
				THEN now() + make_interval(mins => LEAST(60, 5 * GREATEST(attempts, 1)))
				ELSE next_attempt_at END
		WHERE file_name = $1
	`,
		name, fin.Status, fin.CacheHit, fin.BytesUncompressed, fin.Records, fin.Documents,
		fin.Skipped, fin.Inserted, fin.Deduped, fin.FetchMS, fin.ReadMS, fin.DBMS, fin.ElapsedMS,
		fin.ErrText,
	)
	return err
}
