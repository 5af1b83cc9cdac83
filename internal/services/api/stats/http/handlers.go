// Package http provides http transport for stats
package http

import (
	stdhttp "net/http"

	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/api/stats/domain"
	svc "marginalia/internal/services/api/stats/service"
)

// Register mounts stats endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// buckets by kind and day
	httpkit.PostJSON[domain.ByKindInput](r, "/kind", h.byKind)

	// top sources in window
	httpkit.PostJSON[domain.BySourceInput](r, "/source", h.bySource)

	// per-day document activity
	httpkit.PostJSON[domain.ActivityInput](r, "/activity", h.activity)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /stats/kind Stats statsByKind
// @Summary Annotation counts by kind and day
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.ByKindInput true "Query"
// @Success 200 {array} domain.ByKindRow "ok"
// @Router /stats/kind [post]
func (h *handlers) byKind(r *stdhttp.Request, in domain.ByKindInput) (any, error) {
	return h.svc.ByKind(r.Context(), in)
}

// swagger:route POST /stats/source Stats statsBySource
// @Summary Top sources by annotation count
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.BySourceInput true "Query"
// @Success 200 {array} domain.BySourceRow "ok"
// @Router /stats/source [post]
func (h *handlers) bySource(r *stdhttp.Request, in domain.BySourceInput) (any, error) {
	return h.svc.BySource(r.Context(), in)
}

// swagger:route POST /stats/activity Stats statsActivity
// @Summary Per-day document and annotation activity
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.ActivityInput true "Query"
// @Success 200 {array} domain.ActivityRow "ok"
// @Router /stats/activity [post]
func (h *handlers) activity(r *stdhttp.Request, in domain.ActivityInput) (any, error) {
	return h.svc.Activity(r.Context(), in)
}
