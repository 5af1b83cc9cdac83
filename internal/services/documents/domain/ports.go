package domain

import "context"

// WriterPort stores documents and records annotation passes
type WriterPort interface {
	// Write persists one document idempotently on (source_id, external_key).
	// Returns the document id and whether a new row was inserted
	Write(ctx context.Context, in WriteInput) (id string, inserted bool, err error)

	// MarkAnnotated stamps the detector version onto the given documents
	MarkAnnotated(ctx context.Context, ids []string, detver int) error
}

// ReaderPort defines the read interface for documents
type ReaderPort interface {
	// ByID returns one document with its markers
	ByID(ctx context.Context, id string) (Document, error)

	// List returns up to Limit rows ordered by (created_at, id)
	List(ctx context.Context, in ListInput) (rows []Document, next AfterKey, err error)

	// Pending returns documents not yet annotated at the given detver,
	// markers included, ordered by (created_at, id)
	Pending(ctx context.Context, in PendingInput) (rows []Document, next AfterKey, err error)
}
