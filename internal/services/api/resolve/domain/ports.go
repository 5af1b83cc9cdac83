package domain

import "context"

// ServicePort defines the service contract for resolve
type ServicePort interface {
	Resolve(ctx context.Context, in ResolveInput) (ResolveOutput, error)
}
