package domain

import "context"

// ServicePort is the read surface the HTTP layer binds to
type ServicePort interface {
	ByKind(ctx context.Context, in ByKindInput) ([]ByKindRow, error)
	BySource(ctx context.Context, in BySourceInput) ([]BySourceRow, error)
	Activity(ctx context.Context, in ActivityInput) ([]ActivityRow, error)
}
