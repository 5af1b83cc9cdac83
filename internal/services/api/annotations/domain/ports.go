package domain

import "context"

// ServicePort defines the service contract for annotations
type ServicePort interface {
	Samples(ctx context.Context, in SamplesInput) (SamplesOutput, error)
	ByDocument(ctx context.Context, in ByDocumentInput) ([]Annotation, error)
}
