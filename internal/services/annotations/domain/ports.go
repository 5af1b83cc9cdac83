package domain

import "context"

// WriterPort writes annotations
type WriterPort interface {
	WriteBatch(ctx context.Context, xs []Annotation) error

	// MarkStale flips annotations that a later pass no longer produces
	MarkStale(ctx context.Context, ids []string) error
}

// QueryPort queries annotations and samples
type QueryPort interface {
	ListSamples(
		ctx context.Context,
		w Window,
		f Filters,
		after AfterKey,
		limit int,
	) (rows []Sample, next AfterKey, err error)
	ByDocument(ctx context.Context, documentID string) ([]Annotation, error)
	ByID(ctx context.Context, id string) (Annotation, error)
}
