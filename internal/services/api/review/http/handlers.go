// Package http provides http transport for review
package http

import (
	stdhttp "net/http"

	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/api/review/domain"
	svc "marginalia/internal/services/api/review/service"
)

// Register mounts review endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.SubmitInput](r, "/submit", h.submit)
	httpkit.PostJSON[domain.StatusInput](r, "/status", h.status)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /review/submit Review reviewSubmit
// @Summary Queue an annotation for re-checking at the current detector version
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body domain.SubmitInput true "Annotation and reason"
// @Success 200 {object} domain.Review "ok"
// @Router /review/submit [post]
func (h *handlers) submit(r *stdhttp.Request, in domain.SubmitInput) (any, error) {
	return h.svc.Submit(r.Context(), in)
}

// swagger:route POST /review/status Review reviewStatus
// @Summary Report review job state and verdict
// @Tags Review
// @Accept json
// @Produce json
// @Param payload body domain.StatusInput true "Review id"
// @Success 200 {object} domain.Review "ok"
// @Router /review/status [post]
func (h *handlers) status(r *stdhttp.Request, in domain.StatusInput) (any, error) {
	return h.svc.Status(r.Context(), in)
}
