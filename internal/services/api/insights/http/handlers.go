// Package http provides http transport for insights
package http

import (
	stdhttp "net/http"

	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/api/insights/domain"
)

// Register mounts insights endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// headline numbers
	httpkit.PostJSON[domain.KPIsInput](r, "/kpis", h.kpis)

	// bucketed volume from the raw stream
	httpkit.PostJSON[domain.TimeseriesInput](r, "/timeseries", h.timeseries)

	// rollup-backed rankings
	httpkit.PostJSON[domain.TopSourcesInput](r, "/top-sources", h.topSources)
	httpkit.PostJSON[domain.KindMixInput](r, "/kind-mix", h.kindMix)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /insights/kpis Insights insightsKPIs
// @Summary Headline annotation numbers for a window
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.KPIsInput true "Query"
// @Success 200 {object} domain.KPIsResp "ok"
// @Router /insights/kpis [post]
func (h *handlers) kpis(r *stdhttp.Request, in domain.KPIsInput) (any, error) {
	return h.svc.KPIs(r.Context(), in)
}

// swagger:route POST /insights/timeseries Insights insightsTimeseries
// @Summary Bucketed annotation volume over time
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.TimeseriesInput true "Query"
// @Success 200 {object} domain.TimeseriesResp "ok"
// @Router /insights/timeseries [post]
func (h *handlers) timeseries(r *stdhttp.Request, in domain.TimeseriesInput) (any, error) {
	return h.svc.Timeseries(r.Context(), in)
}

// swagger:route POST /insights/top-sources Insights insightsTopSources
// @Summary Sources ranked by rolled-up annotation volume
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.TopSourcesInput true "Query"
// @Success 200 {object} domain.TopSourcesResp "ok"
// @Router /insights/top-sources [post]
func (h *handlers) topSources(r *stdhttp.Request, in domain.TopSourcesInput) (any, error) {
	return h.svc.TopSources(r.Context(), in)
}

// swagger:route POST /insights/kind-mix Insights insightsKindMix
// @Summary Per-kind annotation totals for a window
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body domain.KindMixInput true "Query"
// @Success 200 {object} domain.KindMixResp "ok"
// @Router /insights/kind-mix [post]
func (h *handlers) kindMix(r *stdhttp.Request, in domain.KindMixInput) (any, error) {
	return h.svc.KindMix(r.Context(), in)
}
