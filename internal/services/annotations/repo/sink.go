package repo

import (
	"context"
	"time"

	"marginalia/internal/platform/store"
	str "marginalia/internal/platform/strings"
	"marginalia/internal/services/annotations/domain"
)

// Sink appends annotation rows to the ClickHouse analytics stream.
// A nil sink, or one without a connection, drops writes so the primary
// Postgres path never depends on ClickHouse availability
type Sink struct {
	CH store.Clickhouse
}

// NewSink constructs a sink over the given seam; ch may be nil
func NewSink(ch store.Clickhouse) *Sink { return &Sink{CH: ch} }

var sinkCols = []string{
	"day", "created_at", "document_id", "source_id", "kind",
	"span_start", "span_end", "detver", "status", "lang_hint",
}

// Append writes the batch to marginalia.annotations
func (s *Sink) Append(ctx context.Context, xs []domain.Annotation) error {
	if s == nil || s.CH == nil || len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, a := range xs {
		created := a.CreatedAt.UTC()
		rows = append(rows, []any{
			created.Truncate(24 * time.Hour),
			created,
			a.DocumentID,
			a.SourceID,
			a.Kind,
			uint32(a.SpanStart),
			uint32(a.SpanEnd),
			uint16(a.Detver),
			a.Status,
			str.Deref(a.LangHint),
		})
	}
	return s.CH.InsertBatch(ctx, "marginalia.annotations", sinkCols, rows)
}
