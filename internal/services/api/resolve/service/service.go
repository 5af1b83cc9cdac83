// Package service contains resolve API workflows
package service

import (
	"context"
	"strings"

	"marginalia/internal/core/checking"
	"marginalia/internal/core/resolve"
	perr "marginalia/internal/platform/errors"
	anndom "marginalia/internal/services/annotations/domain"
	"marginalia/internal/services/api/resolve/domain"
)

// Service defines the service contract for resolve
type Service interface{ domain.ServicePort }

// Svc implements Service. It holds no state beyond the resolver, so a
// single instance serves all requests
type Svc struct {
	res    *resolve.Resolver
	detver int
}

// New creates a new resolve service
func New(res *resolve.Resolver, detver int) *Svc {
	if res == nil {
		panic("resolve.Service requires a non nil Resolver")
	}
	return &Svc{res: res, detver: detver}
}

// Resolve runs the requested kinds over one text and returns the accepted
// detections in range order. Detection never fails; only malformed kind
// payloads are rejected
func (s *Svc) Resolve(_ context.Context, in domain.ResolveInput) (domain.ResolveOutput, error) {
	kinds, err := buildKinds(in.Kinds)
	if err != nil {
		return domain.ResolveOutput{}, err
	}

	text := resolve.Text{Body: in.Text}
	for _, m := range in.Markers {
		text.Markers = append(text.Markers, resolve.Marker{
			Span:    checking.Span{Start: m.Start, End: m.End},
			Payload: m.Payload,
		})
	}

	entries := s.res.Resolve(text, kinds).Entries()
	out := domain.ResolveOutput{
		Entries: make([]domain.Entry, 0, len(entries)),
		Count:   len(entries),
		Detver:  s.detver,
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, domain.Entry{
			Start:   e.Span.Start,
			End:     e.Span.End,
			Kind:    e.Checking.Kind().String(),
			Payload: anndom.FromResult(e.Result),
		})
	}
	return out, nil
}

// buildKinds maps kind DTOs onto checking values. Empty input selects the
// default content detector set
func buildKinds(in []domain.KindInput) ([]checking.Checking, error) {
	if len(in) == 0 {
		return checking.DefaultKinds(), nil
	}

	out := make([]checking.Checking, 0, len(in))
	for _, k := range in {
		switch strings.ToLower(strings.TrimSpace(k.Kind)) {
		case "range":
			if k.End <= k.Start {
				return nil, perr.InvalidArgf("resolve: range kind needs start < end, got [%d,%d)", k.Start, k.End)
			}
			out = append(out, checking.Range(checking.Span{Start: k.Start, End: k.End}))
		case "regex":
			if strings.TrimSpace(k.Pattern) == "" {
				return nil, perr.InvalidArgf("resolve: regex kind needs a pattern")
			}
			out = append(out, checking.Regex(k.Pattern))
		default:
			ck, err := checking.ParseKinds(k.Kind)
			if err != nil {
				return nil, perr.InvalidArgf("resolve: %v", err)
			}
			out = append(out, ck...)
		}
	}
	return out, nil
}
