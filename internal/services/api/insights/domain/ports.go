package domain

import "context"

// ServicePort is the read surface the HTTP layer binds to
type ServicePort interface {
	KPIs(ctx context.Context, in KPIsInput) (KPIsResp, error)
	Timeseries(ctx context.Context, in TimeseriesInput) (TimeseriesResp, error)
	TopSources(ctx context.Context, in TopSourcesInput) (TopSourcesResp, error)
	KindMix(ctx context.Context, in KindMixInput) (KindMixResp, error)
}
