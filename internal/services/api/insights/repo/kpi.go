package repo

import (
	"context"

	"marginalia/internal/services/api/insights/domain"
)

// KPIs computes headline numbers for the requested window (usually a single day)
func (s *hybridStore) KPIs(ctx context.Context, in domain.KPIsInput) (domain.KPIsResp, error) {
	start, endExcl, err := window(in.Range)
	if err != nil {
		return domain.KPIsResp{}, err
	}

	sql := `
		SELECT
			?                               AS day,
			toUInt64(count())               AS annotations,
			uniqCombined(12)(document_id)   AS documents,
			uniqCombined(12)(source_id)     AS sources
		FROM marginalia.annotations
		WHERE created_at >= ? AND created_at < ?
	`
	rs, err := s.ch.Query(ctx, sql,
		start.Format("2006-01-02"), // label day in response
		start, endExcl,
	)
	if err != nil {
		return domain.KPIsResp{}, err
	}
	defer rs.Close()

	var (
		day     string
		anns    uint64
		docs    uint64
		sources uint64
	)
	if rs.Next() {
		if err := rs.Scan(&day, &anns, &docs, &sources); err != nil {
			return domain.KPIsResp{}, err
		}
	}
	if err := rs.Err(); err != nil {
		return domain.KPIsResp{}, err
	}

	resp := domain.KPIsResp{
		Day:         day,
		Annotations: int64(anns),
		Documents:   int64(docs),
		Sources:     int64(sources),
	}

	// Derive optional ratio
	if docs > 0 {
		resp.Density = float64(anns) / float64(docs)
	}

	return resp, nil
}
