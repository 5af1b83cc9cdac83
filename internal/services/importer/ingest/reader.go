package ingest

import (
	"io"

	"marginalia/internal/services/importer/domain"

	"marginalia/internal/adapters/corpus"
)

// readerFactory adapts corpus.NewReader to the domain.ReaderFactory
type readerFactory struct{}

// NewReaderFactory returns a factory that wraps corpus.NewReader
func NewReaderFactory() domain.ReaderFactory { return readerFactory{} }

func (readerFactory) New(rc io.ReadCloser) (domain.ReaderPort, error) {
	r, err := corpus.NewReader(rc)
	if err != nil {
		return nil, err
	}
	return &reader{r: r}, nil
}

type reader struct {
	r *corpus.Reader
}

func (r *reader) Next() (domain.Record, error) {
	// domain.Record is an alias to corpus.Record; return directly
	return r.r.Next()
}

func (r *reader) Close() error { return r.r.Close() }

func (r *reader) Stats() (records int, bytes int64) { return r.r.Stats() }
