package repo

import (
	"context"

	"marginalia/internal/services/api/insights/domain"
)

// Reads in this file run against marginalia.annotations_daily, the rollup
// table, so windows older than the raw retention horizon still answer

// TopSources ranks sources by rolled-up annotation volume
func (s *hybridStore) TopSources(ctx context.Context, in domain.TopSourcesInput) (domain.TopSourcesResp, error) {
	start, endExcl, err := window(in.Range)
	if err != nil {
		return domain.TopSourcesResp{}, err
	}
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	sql := `
		SELECT source_id, toUInt64(sum(n)) AS annotations
		FROM marginalia.annotations_daily
		WHERE day >= toDate(?) AND day < toDate(?)
	`
	args := []any{start, endExcl}
	if in.Kind != "" {
		sql += ` AND kind = ?`
		args = append(args, in.Kind)
	}
	sql += `
		GROUP BY source_id
		ORDER BY annotations DESC
		LIMIT ?
	`
	args = append(args, limit)

	rs, err := s.ch.Query(ctx, sql, args...)
	if err != nil {
		return domain.TopSourcesResp{}, err
	}
	defer rs.Close()

	out := domain.TopSourcesResp{Items: []domain.TopSourceRow{}}
	for rs.Next() {
		var (
			id string
			n  uint64
		)
		if err := rs.Scan(&id, &n); err != nil {
			return domain.TopSourcesResp{}, err
		}
		out.Items = append(out.Items, domain.TopSourceRow{SourceID: id, Annotations: int64(n)})
	}
	return out, rs.Err()
}

// KindMix returns per-kind totals for the window
func (s *hybridStore) KindMix(ctx context.Context, in domain.KindMixInput) (domain.KindMixResp, error) {
	start, endExcl, err := window(in.Range)
	if err != nil {
		return domain.KindMixResp{}, err
	}

	sql := `
		SELECT kind, toUInt64(sum(n)) AS annotations
		FROM marginalia.annotations_daily
		WHERE day >= toDate(?) AND day < toDate(?)
		GROUP BY kind
		ORDER BY annotations DESC
	`
	rs, err := s.ch.Query(ctx, sql, start, endExcl)
	if err != nil {
		return domain.KindMixResp{}, err
	}
	defer rs.Close()

	out := domain.KindMixResp{Items: []domain.KindMixRow{}}
	for rs.Next() {
		var (
			kind string
			n    uint64
		)
		if err := rs.Scan(&kind, &n); err != nil {
			return domain.KindMixResp{}, err
		}
		out.Items = append(out.Items, domain.KindMixRow{Kind: kind, Annotations: int64(n)})
	}
	return out, rs.Err()
}
