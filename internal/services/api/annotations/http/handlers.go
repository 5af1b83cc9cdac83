// Package http provides http transport for annotations
package http

import (
	stdhttp "net/http"

	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/services/api/annotations/domain"
	svc "marginalia/internal/services/api/annotations/service"
)

// Register mounts annotations endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// paged samples with document context
	httpkit.PostJSON[domain.SamplesInput](r, "/samples", h.samples)

	// everything pinned to one document
	httpkit.PostJSON[domain.ByDocumentInput](r, "/by-document", h.byDocument)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /annotations/samples Annotations annotationsSamples
// @Summary Paged annotation samples joined to their documents
// @Tags Annotations
// @Accept json
// @Produce json
// @Param payload body domain.SamplesInput true "Query"
// @Success 200 {object} domain.SamplesOutput "ok"
// @Router /annotations/samples [post]
func (h *handlers) samples(r *stdhttp.Request, in domain.SamplesInput) (any, error) {
	return h.svc.Samples(r.Context(), in)
}

// swagger:route POST /annotations/by-document Annotations annotationsByDocument
// @Summary Annotations pinned to one document
// @Tags Annotations
// @Accept json
// @Produce json
// @Param payload body domain.ByDocumentInput true "Document id"
// @Success 200 {array} domain.Annotation "ok"
// @Router /annotations/by-document [post]
func (h *handlers) byDocument(r *stdhttp.Request, in domain.ByDocumentInput) (any, error) {
	return h.svc.ByDocument(r.Context(), in)
}
