// Package http serves the operational endpoints: liveness, readiness,
// build identity, service uptime and detector info
package http

import (
	"context"
	"net/http"
	"time"

	"marginalia/internal/core/version"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/platform/store"
)

// probeTimeout bounds each readiness round trip
const probeTimeout = 2 * time.Second

// Deps carries what the endpoints report on. A nil probe shows up as
// skipped instead of failing readiness
type Deps struct {
	ServiceName     string
	StartedAt       time.Time
	DetectorVersion int
	PG              store.Pinger
	CH              store.Pinger
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/detector", h.detector)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"marginalia-api"`
	Started string `json:"started"  example:"2026-08-25T13:00:00Z"`
	Now     string `json:"now"      example:"2026-08-25T13:05:00Z"`
}

// ReadyCheck describes one dependency probe
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness across probes
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-08-25T13:05:00Z"`
}

// ServiceResponse describes the running service
type ServiceResponse struct {
	Name    string `json:"name"    example:"marginalia-api"`
	Started string `json:"started" example:"2026-08-25T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// DetectorResponse reports the loaded rulepack version and build info
type DetectorResponse struct {
	DetectorVersion int               `json:"detector_version" example:"1"`
	Build           version.BuildInfo `json:"build"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func probe(ctx context.Context, name string, p store.Pinger) ReadyCheck {
	if p == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Now:     stamp(time.Now()),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := []ReadyCheck{
		probe(ctx, "pg", h.deps.PG),
		probe(ctx, "ch", h.deps.CH),
	}

	overall := "ok"
	for _, c := range checks {
		switch c.Status {
		case "fail":
			overall = "fail"
		case "skipped":
			if overall == "ok" {
				overall = "degraded"
			}
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    stamp(time.Now()),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt).Seconds()),
	}, nil
}

// swagger:route GET /meta/detector Meta metaDetector
// @Summary Detector version and build
// @Tags Meta
// @Produce json
// @Success 200 type DetectorResponse ok
// @Router /meta/detector [get]
func (h *handlers) detector(_ *http.Request) (any, error) {
	return DetectorResponse{
		DetectorVersion: h.deps.DetectorVersion,
		Build:           version.Info(),
	}, nil
}
