// Package http provides http transport for resolve
package http

import (
	stdhttp "net/http"

	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/api/resolve/domain"
	svc "marginalia/internal/services/api/resolve/service"
)

// Register mounts resolve endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.ResolveInput](r, "/text", h.resolve)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /resolve/text Resolve resolveText
// @Summary Resolve detections over one text without persisting anything
// @Tags Resolve
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Text, optional markers and kinds"
// @Success 200 {object} domain.ResolveOutput "ok"
// @Router /resolve/text [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), in)
}
