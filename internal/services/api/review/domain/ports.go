package domain

import "context"

// ServicePort defines the service contract for review
type ServicePort interface {
	Submit(ctx context.Context, in SubmitInput) (Review, error)
	Status(ctx context.Context, in StatusInput) (Review, error)
}
