// Package domain holds the core types and ports for corpus import
package domain

import (
	"marginalia/internal/adapters/corpus"
	docdom "marginalia/internal/services/documents/domain"
)

// Record re-exports the corpus record shape used by the reader and extractor
type Record = corpus.Record

// FileRef re-exports the corpus archive reference
type FileRef = corpus.FileRef

// Item is one extracted document pending source resolution.
// Source is the registry name; In.SourceID is filled at write time once the
// name has been minted into an id
type Item struct {
	Source string
	In     docdom.WriteInput
}

// FileFinish captures the outcome of one processed archive
type FileFinish struct {
	Status            string
	CacheHit          bool
	BytesUncompressed int64
	Records           int
	Documents         int
	Skipped           int
	Inserted          int
	Deduped           int
	FetchMS           int
	ReadMS            int
	DBMS              int
	ElapsedMS         int
	ErrText           string
}
