// Package domain holds DTOs for annotations http and service contracts
package domain

import "encoding/json"

// SamplesInput pages through annotations joined with document context.
// Dates are ISO8601 without timezone; the window covers both days fully
type SamplesInput struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02" example:"2026-08-01"`
	End   string `json:"end" validate:"required,datetime=2006-01-02" example:"2026-08-31"`

	// optional filters
	SourceID string `json:"source_id,omitempty" validate:"omitempty,uuid4"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=range regex action date link address phone_number transit_information" example:"phone_number"`
	LangHint string `json:"lang_hint,omitempty" validate:"omitempty,alpha,len=2" example:"en"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=active stale" example:"active"`
	Detver   *int   `json:"detver,omitempty" validate:"omitempty,min=1" example:"1"`

	// keyset cursor from the previous page
	After *AfterKey `json:"after,omitempty"`
	Limit int       `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"100"`
}

// AfterKey is the keyset cursor for samples pagination
type AfterKey struct {
	CreatedAt  string `json:"created_at" validate:"required" example:"2026-08-02T17:04:05Z"`
	DocumentID string `json:"document_id" validate:"required,uuid4"`
}

// Sample is one annotation with enough document context to inspect it
type Sample struct {
	DocumentID string          `json:"document_id"`
	CreatedAt  string          `json:"created_at"`
	SourceID   string          `json:"source_id"`
	LangHint   string          `json:"lang_hint,omitempty"`
	Kind       string          `json:"kind"`
	SpanStart  int             `json:"span_start"`
	SpanEnd    int             `json:"span_end"`
	Text       string          `json:"text"`
	Payload    json.RawMessage `json:"payload"`
	Detver     int             `json:"detver"`
	Status     string          `json:"status"`
}

// SamplesOutput is one page plus the cursor for the next
type SamplesOutput struct {
	Rows []Sample  `json:"rows"`
	Next *AfterKey `json:"next,omitempty"`
}

// ByDocumentInput fetches every annotation pinned to one document
type ByDocumentInput struct {
	DocumentID string `json:"document_id" validate:"required,uuid4"`
}

// Annotation is one stored detection
type Annotation struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	SourceID   string          `json:"source_id"`
	Kind       string          `json:"kind"`
	SpanStart  int             `json:"span_start"`
	SpanEnd    int             `json:"span_end"`
	Payload    json.RawMessage `json:"payload"`
	Detver     int             `json:"detver"`
	Status     string          `json:"status"`
	LangHint   string          `json:"lang_hint,omitempty"`
	CreatedAt  string          `json:"created_at"`
}
