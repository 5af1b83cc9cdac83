// Package repo provides postgres access for stats
package repo

import (
	"context"

	"marginalia/internal/modkit/repokit"
)

// Repo is the minimal persistence surface for stats
type Repo interface {
	ByKind(ctx context.Context, start, end, sourceID, status string) ([]RowByKind, error)
	BySource(ctx context.Context, start, end, kind string) ([]RowBySource, error)
	Activity(ctx context.Context, start, end, sourceID string) ([]RowActivity, error)
}

// RowByKind represents a stats row by kind and day
type RowByKind struct {
	Day         string
	Kind        string
	Annotations int64
}

// RowBySource represents a stats row by source
type RowBySource struct {
	SourceID    string
	Source      string
	Annotations int64
}

// RowActivity represents a per-day document activity row
type RowActivity struct {
	Day         string
	Documents   int64
	Annotated   int64
	Annotations int64
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) ByKind(ctx context.Context, start, end, sourceID, status string) ([]RowByKind, error) {
	const sql = `
select a.created_at::date::text as day, a.kind, count(*) as annotations
from annotations a
where a.created_at::date between $1 and $2
and ($3 = '' or a.source_id::text = $3)
and ($4 = '' or a.status = $4)
group by 1, 2
order by 1 asc, 2 asc
`
	rows, err := r.q.Query(ctx, sql, start, end, sourceID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowByKind
	for rows.Next() {
		var rr RowByKind
		if err := rows.Scan(&rr.Day, &rr.Kind, &rr.Annotations); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) BySource(ctx context.Context, start, end, kind string) ([]RowBySource, error) {
	const sql = `
select a.source_id::text, s.name, count(*) as annotations
from annotations a
join sources s on s.id = a.source_id
where a.created_at::date between $1 and $2
and ($3 = '' or a.kind = $3)
group by 1, 2
order by annotations desc
limit 200
`
	rows, err := r.q.Query(ctx, sql, start, end, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowBySource
	for rows.Next() {
		var rr RowBySource
		if err := rows.Scan(&rr.SourceID, &rr.Source, &rr.Annotations); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) Activity(ctx context.Context, start, end, sourceID string) ([]RowActivity, error) {
	const sql = `
with docs as (
	select created_at::date as day,
	       count(*) as documents,
	       count(*) filter (where detver >= 1) as annotated
	from documents
	where created_at::date between $1 and $2
	and ($3 = '' or source_id::text = $3)
	group by 1
), anns as (
	select created_at::date as day, count(*) as annotations
	from annotations
	where created_at::date between $1 and $2
	and ($3 = '' or source_id::text = $3)
	group by 1
)
select d.day::text, d.documents, d.annotated, coalesce(a.annotations, 0)
from docs d
left join anns a using (day)
order by d.day asc
`
	rows, err := r.q.Query(ctx, sql, start, end, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowActivity
	for rows.Next() {
		var rr RowActivity
		if err := rows.Scan(&rr.Day, &rr.Documents, &rr.Annotated, &rr.Annotations); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
