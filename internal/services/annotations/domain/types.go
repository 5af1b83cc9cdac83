// Package domain defines the types and interfaces for the annotations service
package domain

import "time"

// Window defines a time range with a start (Since) and end (Until)
type Window struct {
	Since time.Time
	Until time.Time
}

// AfterKey is used for pagination in listing samples
type AfterKey struct {
	CreatedAt  time.Time
	DocumentID string // uuid
}

// Filters for querying annotations and samples
type Filters struct {
	SourceID string
	Kind     string // checking kind name
	LangHint string
	Status   string // active | stale
	Detver   *int
}

// Annotation is one resolved detection pinned to a document span.
// CreatedAt carries the document's creation time so analytics can
// bucket by event day rather than by annotation day
type Annotation struct {
	ID         string // uuid, set on reads
	DocumentID string
	SourceID   string
	Kind       string
	SpanStart  int
	SpanEnd    int
	Payload    []byte // jsonb
	Detver     int
	Status     string
	LangHint   *string
	CreatedAt  time.Time
}

// Sample is one annotation joined with enough document context to inspect it
type Sample struct {
	DocumentID string
	CreatedAt  time.Time
	SourceID   string
	LangHint   *string
	Kind       string
	SpanStart  int
	SpanEnd    int
	Text       string // the annotated substring of the body
	Payload    []byte
	Detver     int
	Status     string
}
