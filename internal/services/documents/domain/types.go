// Package domain defines core types and interfaces for documents
package domain

import "time"

// AfterKey supports stable keyset pagination over (created_at, id)
type AfterKey struct {
	CreatedAt time.Time
	ID        string // uuid
}

// Marker is a pre-attached action annotation over the stored body,
// byte offsets [Start,End)
type Marker struct {
	Start   int
	End     int
	Payload string
}

// Document is the stored text with its searchable projection and markers
type Document struct {
	ID          string // uuid
	SourceID    string // uuid
	ExternalKey string
	Body        string // sanitized original
	BodyFold    string // case/width folded search projection
	LangHint    *string
	Script      *string
	Detver      *int // detector version of the last annotation pass, nil = never annotated
	CreatedAt   time.Time
	Markers     []Marker
}

// WriteInput carries one document into storage
type WriteInput struct {
	SourceID    string
	ExternalKey string
	Body        string
	Lang        string    // optional caller hint; empty = detect from body
	CreatedAt   time.Time // zero = now
	Markers     []Marker
}

// ListInput defines the input parameters for listing documents
type ListInput struct {
	Since time.Time // inclusive
	Until time.Time // exclusive
	After AfterKey  // zero value = from start
	Limit int       // hard-capped in service

	// Optional filters (all ANDed)
	SourceID string
	LangHint string
}

// PendingInput pages documents that still need an annotation pass at Detver
type PendingInput struct {
	Detver int
	After  AfterKey
	Limit  int
}
