// Package repo provides repository implementations for documents
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"

	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	"marginalia/internal/services/documents/domain"
)

type binder struct{}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// InsertRow is the fully derived row the service hands to storage
type InsertRow struct {
	In       domain.WriteInput
	BodyFold string
	LangHint *string
	Script   *string
}

// Storage defines the documents repository
type Storage interface {
	Insert(ctx context.Context, row InsertRow) (id string, inserted bool, err error)
	InsertMarkers(ctx context.Context, docID string, ms []domain.Marker) error
	MarkAnnotated(ctx context.Context, ids []string, detver int) error
	ByID(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Document, domain.AfterKey, error)
	Pending(ctx context.Context, in domain.PendingInput, hardLimit int) ([]domain.Document, domain.AfterKey, error)
}

type pg struct{ q repokit.Queryer }

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, row InsertRow) (string, bool, error) {
	const ins = `
		INSERT INTO documents (source_id, external_key, body, body_fold, lang_hint, script, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_id, external_key) DO NOTHING
		RETURNING id::text`

	var id string
	err := s.q.QueryRow(ctx, ins,
		row.In.SourceID, row.In.ExternalKey, row.In.Body, row.BodyFold,
		row.LangHint, row.Script, row.In.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, stdsql.ErrNoRows) {
		return "", false, perr.FromPostgresf(err, "insert document")
	}

	// Conflict path: the row already exists, fetch its id
	const sel = `SELECT id::text FROM documents WHERE source_id = $1::uuid AND external_key = $2`
	if err := s.q.QueryRow(ctx, sel, row.In.SourceID, row.In.ExternalKey).Scan(&id); err != nil {
		return "", false, perr.FromPostgresf(err, "resolve existing document")
	}
	return id, false, nil
}

// InsertMarkers implements Storage
func (s *pg) InsertMarkers(ctx context.Context, docID string, ms []domain.Marker) error {
	if len(ms) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO document_markers (document_id, span_start, span_end, payload) VALUES `)
	args := make([]any, 0, len(ms)*4)
	for i, m := range ms {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*4 + 1
		fmt.Fprintf(&sb, "($%d::uuid,$%d,$%d,$%d)", base, base+1, base+2, base+3)
		args = append(args, docID, m.Start, m.End, m.Payload)
	}
	sb.WriteString(` ON CONFLICT (document_id, span_start, span_end) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresf(err, "insert markers for %s", docID)
}

// MarkAnnotated implements Storage
func (s *pg) MarkAnnotated(ctx context.Context, ids []string, detver int) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `
		UPDATE documents
		SET detver = $1, annotated_at = now()
		WHERE id = ANY($2::uuid[])`
	_, err := s.q.Exec(ctx, q, detver, ids)
	return perr.FromPostgresf(err, "mark %d documents annotated", len(ids))
}

const docColumns = `
	d.id::text,
	d.source_id::text,
	d.external_key,
	d.body,
	d.body_fold,
	d.lang_hint,
	d.script,
	d.detver,
	d.created_at`

func scanDoc(r repokit.Row) (domain.Document, error) {
	var d domain.Document
	err := r.Scan(
		&d.ID, &d.SourceID, &d.ExternalKey, &d.Body, &d.BodyFold,
		&d.LangHint, &d.Script, &d.Detver, &d.CreatedAt,
	)
	return d, err
}

// ByID implements Storage
func (s *pg) ByID(ctx context.Context, id string) (domain.Document, error) {
	q := `SELECT` + docColumns + ` FROM documents d WHERE d.id = $1::uuid`
	d, err := scanDoc(s.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Document{}, perr.NotFoundf("document %s", id)
		}
		return domain.Document{}, err
	}
	ms, err := s.fetchMarkers(ctx, []string{d.ID})
	if err != nil {
		return domain.Document{}, err
	}
	d.Markers = ms[d.ID]
	return d, nil
}

// List implements Storage
func (s *pg) List(ctx context.Context, in domain.ListInput, hardLimit int) ([]domain.Document, domain.AfterKey, error) {
	// Dynamic WHERE with numbered args
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT` + docColumns + `
		FROM documents d
		WHERE d.created_at >= ` + arg(in.Since) + ` AND d.created_at < ` + arg(in.Until) + "\n")

	// Keyset only when AfterKey is set (avoid ""::uuid on first page)
	if in.After.ID != "" {
		sb.WriteString("  AND (d.created_at, d.id) > (" + arg(in.After.CreatedAt) + ", " + arg(in.After.ID) + "::uuid)\n")
	}
	if in.SourceID != "" {
		sb.WriteString("  AND d.source_id = " + arg(in.SourceID) + "::uuid\n")
	}
	if in.LangHint != "" {
		sb.WriteString("  AND d.lang_hint = " + arg(in.LangHint) + "\n")
	}

	sb.WriteString("ORDER BY d.created_at, d.id\nLIMIT " + arg(hardLimit))

	return s.page(ctx, sb.String(), args, hardLimit)
}

// Pending implements Storage
func (s *pg) Pending(ctx context.Context, in domain.PendingInput, hardLimit int) ([]domain.Document, domain.AfterKey, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT` + docColumns + `
		FROM documents d
		WHERE (d.detver IS NULL OR d.detver < ` + arg(in.Detver) + ")\n")
	if in.After.ID != "" {
		sb.WriteString("  AND (d.created_at, d.id) > (" + arg(in.After.CreatedAt) + ", " + arg(in.After.ID) + "::uuid)\n")
	}
	sb.WriteString("ORDER BY d.created_at, d.id\nLIMIT " + arg(hardLimit))

	return s.page(ctx, sb.String(), args, hardLimit)
}

// page runs a document query and attaches markers to each row
func (s *pg) page(
	ctx context.Context,
	sql string,
	args []any,
	hardLimit int,
) ([]domain.Document, domain.AfterKey, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	defer rows.Close()

	out := make([]domain.Document, 0, hardLimit)
	var last domain.AfterKey
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID, &d.SourceID, &d.ExternalKey, &d.Body, &d.BodyFold,
			&d.LangHint, &d.Script, &d.Detver, &d.CreatedAt,
		); err != nil {
			return nil, domain.AfterKey{}, err
		}
		out = append(out, d)
		last = domain.AfterKey{CreatedAt: d.CreatedAt, ID: d.ID}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.AfterKey{}, err
	}

	if len(out) > 0 {
		ids := make([]string, len(out))
		for i := range out {
			ids[i] = out[i].ID
		}
		ms, err := s.fetchMarkers(ctx, ids)
		if err != nil {
			return nil, domain.AfterKey{}, err
		}
		for i := range out {
			out[i].Markers = ms[out[i].ID]
		}
	}
	return out, last, nil
}

// fetchMarkers loads markers for a set of documents in one round trip
func (s *pg) fetchMarkers(ctx context.Context, ids []string) (map[string][]domain.Marker, error) {
	const q = `
		SELECT document_id::text, span_start, span_end, payload
		FROM document_markers
		WHERE document_id = ANY($1::uuid[])
		ORDER BY document_id, span_start, span_end`
	rows, err := s.q.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Marker, len(ids))
	for rows.Next() {
		var id string
		var m domain.Marker
		if err := rows.Scan(&id, &m.Start, &m.End, &m.Payload); err != nil {
			return nil, err
		}
		out[id] = append(out[id], m)
	}
	return out, rows.Err()
}
