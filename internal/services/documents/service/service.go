// Package service provides the documents service implementation
package service

import (
	"context"
	"strings"
	"time"

	"marginalia/internal/core/langhint"
	"marginalia/internal/core/normalize"
	"marginalia/internal/modkit/repokit"
	perr "marginalia/internal/platform/errors"
	str "marginalia/internal/platform/strings"
	"marginalia/internal/services/documents/domain"
	"marginalia/internal/services/documents/repo"
)

// Config for the documents service
type Config struct {
	// HardLimit is the maximum allowed limit per page; defaults to 5000 if <=0
	HardLimit int
}

// Service implements domain.WriterPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Fold   *normalize.Folder
	Cfg    Config
}

// New constructs a new documents service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 5000
	}
	return &Service{DB: db, Binder: b, Fold: normalize.New(), Cfg: cfg}
}

// Write implements domain.WriterPort.
// The body is sanitized before storage; markers are validated against the
// sanitized body and silently dropped when out of range
func (s *Service) Write(ctx context.Context, in domain.WriteInput) (string, bool, error) {
	if in.SourceID == "" {
		return "", false, perr.InvalidArgf("documents: missing source id")
	}
	if in.ExternalKey == "" {
		return "", false, perr.InvalidArgf("documents: missing external key")
	}

	body := normalize.Sanitize(in.Body)
	if strings.TrimSpace(body) == "" {
		return "", false, perr.InvalidArgf("documents: empty body")
	}
	in.Body = body
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	row := repo.InsertRow{In: in, BodyFold: s.Fold.Fold(body)}
	script, lang := langhint.DetectScriptAndLang(body)
	// a caller-supplied hint beats detection, but whitespace junk does not
	if v := str.EmptyToNil(in.Lang); v != "" {
		lang = v
	}
	row.LangHint = str.Ptr(lang)
	row.Script = str.Ptr(script)

	keep := make([]domain.Marker, 0, len(in.Markers))
	for _, m := range in.Markers {
		if m.Start >= 0 && m.Start < m.End && m.End <= len(body) {
			keep = append(keep, m)
		}
	}

	var id string
	var inserted bool
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		var err error
		id, inserted, err = st.Insert(ctx, row)
		if err != nil {
			return err
		}
		if inserted && len(keep) > 0 {
			return st.InsertMarkers(ctx, id, keep)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return id, inserted, nil
}

// MarkAnnotated implements domain.WriterPort
func (s *Service) MarkAnnotated(ctx context.Context, ids []string, detver int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).MarkAnnotated(ctx, ids, detver)
	})
}

// ByID implements domain.ReaderPort
func (s *Service) ByID(ctx context.Context, id string) (domain.Document, error) {
	var d domain.Document
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		d, err = s.Binder.Bind(q).ByID(ctx, id)
		return err
	})
	return d, err
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, in domain.ListInput) ([]domain.Document, domain.AfterKey, error) {
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var rows []domain.Document
	var next domain.AfterKey
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, next, err = s.Binder.Bind(q).List(ctx, in, limit)
		return err
	})
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	return rows, next, nil
}

// Pending implements domain.ReaderPort
func (s *Service) Pending(ctx context.Context, in domain.PendingInput) ([]domain.Document, domain.AfterKey, error) {
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var rows []domain.Document
	var next domain.AfterKey
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, next, err = s.Binder.Bind(q).Pending(ctx, in, limit)
		return err
	})
	if err != nil {
		return nil, domain.AfterKey{}, err
	}
	return rows, next, nil
}
