package service

import (
	"context"
	"sort"
	"strings"

	"marginalia/internal/modkit/repokit"
	"marginalia/internal/services/sources/domain"
)

// EnsureSources mints registry rows for the given names and returns name -> id.
// Names are trimmed, deduped and sorted before the upsert so concurrent
// batches take row locks in the same order
func (s *Svc) EnsureSources(ctx context.Context, names []string) (map[string]string, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	if len(set) == 0 {
		return map[string]string{}, nil
	}
	xs := make([]string, 0, len(set))
	for n := range set {
		xs = append(xs, n)
	}
	sort.Strings(xs)

	var out map[string]string
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		m, err := s.binder.Bind(q).EnsureSources(ctx, xs)
		if err == nil {
			out = m
		}
		return err
	})
	return out, err
}

// ByName returns one source row
func (s *Svc) ByName(ctx context.Context, name string) (domain.Source, error) {
	var out domain.Source
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		src, err := s.binder.Bind(q).ByName(ctx, strings.TrimSpace(name))
		if err == nil {
			out = src
		}
		return err
	})
	return out, err
}
