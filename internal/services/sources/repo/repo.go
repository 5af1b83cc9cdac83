// Package repo provides the sources registry repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	ptime "marginalia/internal/platform/time"
	"marginalia/internal/services/sources/domain"
)

// Repo defines the sources repository contract
type Repo interface {
	// EnsureSources mints missing rows and bumps last_seen on existing ones.
	// Names must be pre-trimmed, deduped and sorted; returns name -> id
	EnsureSources(ctx context.Context, names []string) (map[string]string, error)

	// ByName returns one source row
	ByName(ctx context.Context, name string) (domain.Source, error)

	// TouchFromDocuments widens first_seen/last_seen from documents in the
	// window and marks touched sources due for a stats pass
	TouchFromDocuments(ctx context.Context, since, until time.Time, limit int) (int, error)

	// ClaimDue reserves up to n due sources by pushing next_refresh_at out by
	// lease, so concurrent workers skip them
	ClaimDue(ctx context.Context, n int, lease time.Duration) ([]domain.Source, error)

	// RefreshStats recomputes counters for one source and schedules the next pass
	RefreshStats(ctx context.Context, id string, next time.Time) error

	// Nack reschedules a failed refresh after backoff
	Nack(ctx context.Context, id string, backoff time.Duration) error
}

type (
	// PG is a Postgres binder for Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres sources repository
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// EnsureSources implements Repo.
// The DO UPDATE arm makes the conflict rows visible to RETURNING, so one
// statement yields ids for new and existing names alike
func (r *queries) EnsureSources(ctx context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	rows, err := r.q.Query(ctx, `
		INSERT INTO sources (name, first_seen, last_seen)
		SELECT DISTINCT x, now(), now()
		FROM unnest($1::text[]) AS t(x)
		ON CONFLICT (name) DO UPDATE SET last_seen = now()
		RETURNING id::text, name
	`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

const sourceColumns = `id::text, name, first_seen, last_seen, documents, annotations, last_refreshed_at, next_refresh_at`

func scanSource(row repokit.Row) (domain.Source, error) {
	var s domain.Source
	var refreshed, next stdsql.NullTime
	if err := row.Scan(
		&s.ID, &s.Name, &s.FirstSeen, &s.LastSeen,
		&s.Documents, &s.Annotations, &refreshed, &next,
	); err != nil {
		return domain.Source{}, err
	}
	s.LastRefreshedAt = ptime.NullPtr(refreshed)
	s.NextRefreshAt = ptime.NullPtr(next)
	return s, nil
}

// ByName implements Repo
func (r *queries) ByName(ctx context.Context, name string) (domain.Source, error) {
	row := r.q.QueryRow(ctx, `SELECT `+sourceColumns+` FROM sources WHERE name = $1`, name)
	s, err := scanSource(row)
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Source{}, perr.NotFoundf("source %q not found", name)
		}
		return domain.Source{}, err
	}
	return s, nil
}

// TouchFromDocuments implements Repo
func (r *queries) TouchFromDocuments(ctx context.Context, since, until time.Time, limit int) (int, error) {
	tag, err := r.q.Exec(ctx, `
		WITH agg AS (
			SELECT d.source_id, MIN(d.created_at) AS first_c, MAX(d.created_at) AS last_c
			FROM documents d
			WHERE d.created_at >= $1 AND d.created_at < $2
			GROUP BY d.source_id
			ORDER BY MAX(d.created_at) DESC
			LIMIT NULLIF($3, 0)
		)
		UPDATE sources s SET
			first_seen      = LEAST(s.first_seen, agg.first_c),
			last_seen       = GREATEST(s.last_seen, agg.last_c),
			next_refresh_at = now()
		FROM agg
		WHERE s.id = agg.source_id
	`, since.UTC(), until.UTC(), limit)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ClaimDue implements Repo
func (r *queries) ClaimDue(ctx context.Context, n int, lease time.Duration) ([]domain.Source, error) {
	rows, err := r.q.Query(ctx, `
		WITH cte AS (
			SELECT id
			FROM sources
			WHERE next_refresh_at IS NULL OR next_refresh_at <= NOW()
			ORDER BY next_refresh_at ASC NULLS FIRST
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE sources s
		SET next_refresh_at = NOW() + $2::interval
		FROM cte
		WHERE s.id = cte.id
		RETURNING `+sourceColumns+`
	`, n, lease.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RefreshStats implements Repo
func (r *queries) RefreshStats(ctx context.Context, id string, next time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sources s SET
			documents         = (SELECT count(*) FROM documents d WHERE d.source_id = s.id),
			annotations       = (SELECT count(*) FROM annotations a WHERE a.source_id = s.id AND a.status = 'active'),
			last_refreshed_at = NOW(),
			next_refresh_at   = $2
		WHERE s.id = $1::uuid
	`, id, next.UTC())
	return err
}

// Nack implements Repo
func (r *queries) Nack(ctx context.Context, id string, backoff time.Duration) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sources SET next_refresh_at = NOW() + $2::interval WHERE id = $1::uuid
	`, id, backoff.String())
	return err
}
