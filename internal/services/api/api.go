// Package api composes the HTTP surface from the feature modules
package api

import (
	"fmt"
	"net/http"
	"time"

	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	phttp "marginalia/internal/platform/net/http"
	"marginalia/internal/platform/store"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/httpkit"
	"marginalia/internal/modkit/module"
	"marginalia/internal/modkit/swaggerkit"

	anndom "marginalia/internal/services/annotations/domain"
	annotationsworker "marginalia/internal/services/annotations/module"
	documentsmod "marginalia/internal/services/documents/module"

	apiannotations "marginalia/internal/services/api/annotations/module"
	insightsmod "marginalia/internal/services/api/insights/module"
	metamod "marginalia/internal/services/api/meta/module"
	apiresolve "marginalia/internal/services/api/resolve/module"
	apireview "marginalia/internal/services/api/review/module"
	statsmod "marginalia/internal/services/api/stats/module"

	workerreview "marginalia/internal/services/review/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// cacheControl marks responses as briefly cacheable, overriding the
// no-cache defaults from the common stack. The stats and insights
// modules serve rollups that lag writes anyway, so clients may keep
// them for a minute
func cacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Del("Expires")
			h.Del("Pragma")
			h.Del("X-Accel-Expires")
			h.Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// Mount wires the modules together and attaches them to r
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// domain modules first; the review worker and the annotations API both
	// draw their ports from these
	docs := documentsmod.New(deps)
	anns := annotationsworker.New(deps)

	// the worker review module owns the queue; the API only borrows its
	// enqueue and status surface, the loop runs in the review command
	reviewWorker := workerreview.New(
		deps,
		workerreview.Options{},
		workerreview.WithDepsModules(docs, anns),
	)
	rports := module.MustPortsOf[workerreview.Ports](reviewWorker)

	reviewAPI := apireview.New(
		deps,
		modkit.WithPorts(apireview.Ports{
			Enqueuer: rports.Enqueuer,
			Status:   rports.Status,
		}),
	)

	// the annotations API reads through the worker module's query port
	annotationsAPI := apiannotations.New(
		deps,
		modkit.WithPorts(apiannotations.Ports{
			Query: module.MustPortsOf[anndom.QueryPort](anns),
		}),
	)

	mods := []module.Module{
		metamod.New(deps),
		apiresolve.New(deps),
		statsmod.New(deps, modkit.WithMiddlewares(cacheControl(time.Minute))),
		insightsmod.New(deps, modkit.WithMiddlewares(cacheControl(time.Minute))),
		annotationsAPI,
		reviewAPI,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
