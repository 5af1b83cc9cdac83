package domain

import (
	"context"
	"io"

	docdom "marginalia/internal/services/documents/domain"
	srcdom "marginalia/internal/services/sources/domain"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	// PlanFiles seeds import jobs for the named archives without processing
	PlanFiles(ctx context.Context, names []string) error

	// RunFiles seeds and processes the named archives
	RunFiles(ctx context.Context, names []string) error

	// RunResume drains pending or errored jobs regardless of name
	RunResume(ctx context.Context) error
}

// StorageRepo is the job bookkeeping interface
type StorageRepo interface {
	// PreseedFiles registers archives as pending jobs; returns newly added count
	PreseedFiles(ctx context.Context, names []string) (int, error)

	// NextFileToProcess claims one pending or errored job.
	// A nil names filter claims from the whole table
	NextFileToProcess(ctx context.Context, names []string) (string, bool, error)

	// StartFile marks the beginning of an import job (idempotent)
	StartFile(ctx context.Context, name string) error

	// FinishFile marks the end of an import job (idempotent)
	FinishFile(ctx context.Context, name string, fin FileFinish) error
}

// Fetcher is the archive fetcher interface
type Fetcher interface {
	Fetch(ctx context.Context, ref FileRef) (io.ReadCloser, error)
}

// ReaderPort is the record reader interface
type ReaderPort interface {
	Next() (Record, error)
	Close() error
	Stats() (records int, bytes int64) // return zeros if not supported
}

// ReaderFactory is the record reader factory interface
type ReaderFactory interface {
	New(io.ReadCloser) (ReaderPort, error)
}

// Extractor turns a corpus record into an importable item.
// Returns false for records with no usable source, key or text
type Extractor interface {
	FromRecord(rec Record) (Item, bool)
}

// Ports are dependencies injected into the importer module
type Ports struct {
	Documents docdom.WriterPort   // required
	Sources   srcdom.RegistryPort // required
}
