// Package repo provides the storage repository implementation for insights
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/platform/store"
	"marginalia/internal/services/api/insights/domain"
)

// StorageRepo defines the storage repository interface for insights
type StorageRepo interface {
	KPIs(ctx context.Context, in domain.KPIsInput) (domain.KPIsResp, error)
	Timeseries(ctx context.Context, in domain.TimeseriesInput) (domain.TimeseriesResp, error)
	TopSources(ctx context.Context, in domain.TopSourcesInput) (domain.TopSourcesResp, error)
	KindMix(ctx context.Context, in domain.KindMixInput) (domain.KindMixResp, error)
}

// NewHybrid constructs a hybrid storage binder using PG and CH
func NewHybrid(ch store.Clickhouse) repokit.Binder[StorageRepo] { return &hybridBinder{ch: ch} }

type hybridBinder struct{ ch store.Clickhouse }

// Bind binds a Queryer to produce a StorageRepo
func (b *hybridBinder) Bind(q repokit.Queryer) StorageRepo { return &hybridStore{pg: q, ch: b.ch} }

type hybridStore struct {
	pg repokit.Queryer
	ch store.Clickhouse
}

// window parses an inclusive date pair into [start, endExcl)
func window(r domain.TimeRange) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endIncl, err := time.Parse("2006-01-02", r.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, endIncl.Add(24 * time.Hour), nil
}

// Timeseries queries ClickHouse for annotation volume over time
func (s *hybridStore) Timeseries(
	ctx context.Context,
	in domain.TimeseriesInput,
) (domain.TimeseriesResp, error) {
	interval := strings.ToLower(strings.TrimSpace(in.Interval))
	switch interval {
	case "", "auto":
		interval = "day"
	case "hour", "day", "week", "month":
	default:
		interval = "day"
	}
	tz := strings.TrimSpace(in.TZ)
	if tz == "" {
		tz = "UTC"
	}

	start, endExcl, err := window(in.Range)
	if err != nil {
		return domain.TimeseriesResp{}, err
	}

	var bucketExpr, fmtMask string
	switch interval {
	case "hour":
		bucketExpr = "toStartOfHour(toTimeZone(created_at, ?))"
		fmtMask = "%Y-%m-%dT%H:00:00"
	case "week":
		bucketExpr = "toStartOfWeek(toTimeZone(created_at, ?))"
		fmtMask = "%Y-%m-%d"
	case "month":
		bucketExpr = "toStartOfMonth(toTimeZone(created_at, ?))"
		fmtMask = "%Y-%m-01"
	default: // day
		bucketExpr = "toStartOfDay(toTimeZone(created_at, ?))"
		fmtMask = "%Y-%m-%d"
	}

	args := []any{tz, start, endExcl}
	var filters strings.Builder
	if in.Kind != "" {
		filters.WriteString(" AND kind = ?")
		args = append(args, in.Kind)
	}
	if in.SourceID != "" {
		filters.WriteString(" AND source_id = ?")
		args = append(args, in.SourceID)
	}

	sql := fmt.Sprintf(`
		SELECT
			formatDateTime(%s, '%s') AS t,
			toUInt64(count())        AS annotations,
			uniqCombined(12)(document_id) AS documents
		FROM marginalia.annotations
		WHERE created_at >= ? AND created_at < ?%s
		GROUP BY t
		ORDER BY t ASC
	`, bucketExpr, fmtMask, filters.String())

	rs, err := s.ch.Query(ctx, sql, args...)
	if err != nil {
		return domain.TimeseriesResp{}, err
	}
	defer rs.Close()

	type row struct {
		t    string
		anns uint64
		docs uint64
	}
	var fetched []row
	for rs.Next() {
		var r row
		if err := rs.Scan(&r.t, &r.anns, &r.docs); err != nil {
			return domain.TimeseriesResp{}, err
		}
		fetched = append(fetched, r)
	}
	if err := rs.Err(); err != nil {
		return domain.TimeseriesResp{}, err
	}

	emitKey := func(t time.Time) string {
		if interval == "hour" {
			return t.Format("2006-01-02T15:00:00")
		}
		return t.Format("2006-01-02")
	}

	byKey := make(map[string]row, len(fetched))
	for _, r := range fetched {
		byKey[r.t] = r
	}

	buildPoint := func(key string, r row) domain.TimeseriesPoint {
		pt := domain.TimeseriesPoint{
			T:           key,
			Annotations: int64(r.anns),
			Documents:   int64(r.docs),
		}
		if r.docs > 0 {
			pt.Density = float64(r.anns) / float64(r.docs)
		}
		return pt
	}

	var series []domain.TimeseriesPoint
	switch interval {
	case "month":
		// keep sparse months (variable step)
		series = make([]domain.TimeseriesPoint, 0, len(fetched))
		for _, r := range fetched {
			series = append(series, buildPoint(r.t, r))
		}
	default:
		// linear step fill for hour/day/week
		step := 24 * time.Hour
		switch interval {
		case "hour":
			step = time.Hour
		case "week":
			step = 7 * 24 * time.Hour
		}
		for t := start; t.Before(endExcl); t = t.Add(step) {
			key := emitKey(t)
			r := byKey[key] // zero-value row if missing
			series = append(series, buildPoint(key, r))
		}
	}

	return domain.TimeseriesResp{
		Interval: interval,
		Series:   series,
	}, nil
}
