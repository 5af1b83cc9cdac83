package ingest

import (
	"strings"

	"marginalia/internal/adapters/corpus"
	"marginalia/internal/core/normalize"
	docdom "marginalia/internal/services/documents/domain"
	"marginalia/internal/services/importer/domain"
)

type extractor struct{}

// NewExtractor constructs a new Extractor
func NewExtractor() domain.Extractor { return extractor{} }

// FromRecord maps a corpus record onto an importable item.
// The body is sanitized here so derived markers and the stored text agree on
// byte offsets; the documents service sanitizes idempotently on top
func (extractor) FromRecord(rec domain.Record) (domain.Item, bool) {
	source := strings.TrimSpace(rec.Source)
	key := strings.TrimSpace(rec.Key)
	body := normalize.Sanitize(rec.Text)
	if source == "" || key == "" || strings.TrimSpace(body) == "" {
		return domain.Item{}, false
	}

	markers := rec.Markers
	if len(markers) == 0 {
		// No explicit highlights: derive them from markup zones so action
		// checking still has ranges to adopt
		markers = corpus.DeriveMarkers(body)
	}

	in := docdom.WriteInput{
		ExternalKey: key,
		Body:        body,
		Lang:        strings.TrimSpace(rec.Lang),
		CreatedAt:   rec.CreatedAt,
	}
	for _, m := range markers {
		in.Markers = append(in.Markers, docdom.Marker{Start: m.Start, End: m.End, Payload: m.Payload})
	}
	return domain.Item{Source: source, In: in}, true
}
