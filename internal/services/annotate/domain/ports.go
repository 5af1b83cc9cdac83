package domain

import (
	"context"
	"time"

	anndom "marginalia/internal/services/annotations/domain"
	docdom "marginalia/internal/services/documents/domain"
)

// RunnerPort is the external port for the annotate job
type RunnerPort interface {
	// RunRange annotates documents created within [start, end)
	RunRange(ctx context.Context, start, end time.Time) error

	// RunResume drains documents that have not been annotated at the
	// configured detector version yet
	RunResume(ctx context.Context) error
}

// Ports are dependencies injected into the annotate module
type Ports struct {
	Documents   docdom.ReaderPort // required
	Stamper     docdom.WriterPort // required
	Annotations anndom.WriterPort // required
}
