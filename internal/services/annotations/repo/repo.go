// Package repo provides the annotations repository implementation.
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"

	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	"marginalia/internal/services/annotations/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the annotations repository
type Storage interface {
	WriteBatch(ctx context.Context, xs []domain.Annotation) error
	MarkStale(ctx context.Context, ids []string) error
	ListSamples(
		ctx context.Context,
		w domain.Window,
		f domain.Filters,
		after domain.AfterKey,
		limit int,
	) ([]domain.Sample, domain.AfterKey, error)
	ByDocument(ctx context.Context, documentID string) ([]domain.Annotation, error)
	ByID(ctx context.Context, id string) (domain.Annotation, error)
}

// WriteBatch implements Storage
func (s *pg) WriteBatch(ctx context.Context, xs []domain.Annotation) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO annotations
		(document_id, source_id, kind, span_start, span_end,
		payload, detver, status, lang_hint, created_at) VALUES `)

	args := make([]any, 0, len(xs)*10)
	for i, a := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*10 + 1
		fmt.Fprintf(&sb, "($%d::uuid,$%d::uuid,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4,
			base+5, base+6, base+7, base+8, base+9)

		args = append(args,
			a.DocumentID, a.SourceID, a.Kind, a.SpanStart, a.SpanEnd,
			a.Payload, a.Detver, a.Status, a.LangHint, a.CreatedAt,
		)
	}
	// Idempotent for same detver & span
	sb.WriteString(` ON CONFLICT (document_id, span_start, span_end, detver) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// MarkStale implements Storage
func (s *pg) MarkStale(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `UPDATE annotations SET status = 'stale' WHERE id = ANY($1::uuid[])`
	_, err := s.q.Exec(ctx, q, ids)
	return err
}

// ListSamples implements Storage
func (s *pg) ListSamples(
	ctx context.Context,
	w domain.Window,
	f domain.Filters,
	after domain.AfterKey,
	limit int,
) ([]domain.Sample, domain.AfterKey, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT
			a.document_id::text,
			d.created_at,
			a.source_id::text,
			a.lang_hint,
			a.kind,
			a.span_start, a.span_end,
			substring(d.body FROM a.span_start + 1 FOR a.span_end - a.span_start) AS text,
			a.payload,
			a.detver,
			a.status
		FROM annotations a
		JOIN documents d ON d.id = a.document_id
		WHERE d.created_at >= ` + arg(w.Since) + ` AND d.created_at < ` + arg(w.Until) + "\n")

	// Keyset only when AfterKey is set (avoid ""::uuid on first page)
	if after.DocumentID != "" {
		sb.WriteString(
			"  AND (d.created_at, d.id) > (" +
				arg(after.CreatedAt) + ", " +
				arg(after.DocumentID) + "::uuid)\n",
		)
	}

	if f.SourceID != "" {
		sb.WriteString("  AND a.source_id = " + arg(f.SourceID) + "::uuid\n")
	}
	if f.Kind != "" {
		sb.WriteString("  AND a.kind = " + arg(f.Kind) + "\n")
	}
	if f.LangHint != "" {
		sb.WriteString("  AND a.lang_hint = " + arg(f.LangHint) + "\n")
	}
	if f.Status != "" {
		sb.WriteString("  AND a.status = " + arg(f.Status) + "\n")
	}
	if f.Detver != nil {
		sb.WriteString("  AND a.detver = " + arg(*f.Detver) + "\n")
	}

	sb.WriteString("ORDER BY d.created_at, d.id, a.span_start\nLIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	defer rows.Close()

	out := make([]domain.Sample, 0, limit)
	var last domain.AfterKey
	for rows.Next() {
		var srow domain.Sample
		if err := rows.Scan(
			&srow.DocumentID, &srow.CreatedAt, &srow.SourceID, &srow.LangHint,
			&srow.Kind, &srow.SpanStart, &srow.SpanEnd, &srow.Text,
			&srow.Payload, &srow.Detver, &srow.Status,
		); err != nil {
			return nil, domain.AfterKey{}, err
		}
		out = append(out, srow)
		last = domain.AfterKey{CreatedAt: srow.CreatedAt, DocumentID: srow.DocumentID}
	}
	return out, last, rows.Err()
}

// ByID implements Storage
func (s *pg) ByID(ctx context.Context, id string) (domain.Annotation, error) {
	const q = `
		SELECT
			a.id::text, a.document_id::text, a.source_id::text, a.kind,
			a.span_start, a.span_end, a.payload, a.detver, a.status,
			a.lang_hint, a.created_at
		FROM annotations a
		WHERE a.id = $1::uuid`
	var a domain.Annotation
	if err := s.q.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.DocumentID, &a.SourceID, &a.Kind,
		&a.SpanStart, &a.SpanEnd, &a.Payload, &a.Detver, &a.Status,
		&a.LangHint, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Annotation{}, perr.NotFoundf("annotation %s", id)
		}
		return domain.Annotation{}, err
	}
	return a, nil
}

// ByDocument implements Storage
func (s *pg) ByDocument(ctx context.Context, documentID string) ([]domain.Annotation, error) {
	const q = `
		SELECT
			a.id::text, a.document_id::text, a.source_id::text, a.kind,
			a.span_start, a.span_end, a.payload, a.detver, a.status,
			a.lang_hint, a.created_at
		FROM annotations a
		WHERE a.document_id = $1::uuid
		ORDER BY a.span_start, a.span_end`
	rows, err := s.q.Query(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Annotation
	for rows.Next() {
		var a domain.Annotation
		if err := rows.Scan(
			&a.ID, &a.DocumentID, &a.SourceID, &a.Kind,
			&a.SpanStart, &a.SpanEnd, &a.Payload, &a.Detver, &a.Status,
			&a.LangHint, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
