// Package domain defines core review ports and types
package domain

import (
	"context"

	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
)

// EnqueueArgs holds parameters for enqueuing a review
type EnqueueArgs struct {
	AnnotationID string
	Reason       string
}

// EnqueuePort enqueues review jobs, idempotent per annotation and reason
type EnqueuePort interface {
	EnqueueReview(ctx context.Context, args EnqueueArgs) (ReviewJob, error)
}

// StatusPort reads review job state
type StatusPort interface {
	ReviewByID(ctx context.Context, id string) (ReviewJob, error)
}

// WorkerPort runs the review worker loop
type WorkerPort interface {
	Run(ctx context.Context) error
}

// Ports are the cross-module dependencies injected into the review module
type Ports struct {
	Documents   docdom.ReaderPort // required
	Annotations anndom.QueryPort  // required
	Marker      anndom.WriterPort // required
}
