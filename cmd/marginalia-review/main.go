package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/module"
	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	"marginalia/internal/platform/store"

	annotationsmod "marginalia/internal/services/annotations/module"
	docmod "marginalia/internal/services/documents/module"
	reviewmod "marginalia/internal/services/review/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientRole: "marginalia",
			ClientTag:  "review",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Flags (same spirit as the annotate tool)
	var (
		fConc   = flag.Int("concurrency", 4, "worker concurrency")
		fBatch  = flag.Int("batch", 32, "DB lease batch size per poll")
		fLease  = flag.Duration("lease", 0, "job lease duration (0 = config default)")
		fRetry  = flag.Int("retry_base_ms", 500, "base backoff (ms) for transient errors")
		fMaxAtt = flag.Int("max_attempts", 5, "max attempts before a job parks as error")
		fDetVer = flag.Int("detver", 1, "detector version verdicts are checked against")
		fKinds  = flag.String("kinds", "", "CSV of content kinds to replay (empty = all)")
	)
	flag.Parse()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Export as env so the module can also read via FromConfig
	mustSetEnv("CORE_REVIEW_WORKER_CONCURRENCY", fmt.Sprintf("%d", *fConc))
	mustSetEnv("CORE_REVIEW_QUEUE_TAKE_BATCH", fmt.Sprintf("%d", *fBatch))
	mustSetEnv("CORE_REVIEW_RETRY_BASE", fmt.Sprintf("%dms", *fRetry))
	mustSetEnv("CORE_REVIEW_MAX_ATTEMPTS", fmt.Sprintf("%d", *fMaxAtt))
	mustSetEnv("CORE_REVIEW_DETVER", fmt.Sprintf("%d", *fDetVer))
	mustSetEnv("CORE_REVIEW_KINDS", *fKinds)

	// The review worker re-reads documents and flips annotations, so both
	// domain modules come up first
	docs := docmod.New(deps)
	anns := annotationsmod.New(deps)

	mod := reviewmod.New(deps, reviewmod.Options{
		Concurrency:    *fConc,
		QueueTakeBatch: *fBatch,
		LeaseFor:       *fLease,
		MaxAttempts:    *fMaxAtt,
		Detver:         *fDetVer,
		Kinds:          *fKinds,
	}, reviewmod.WithDepsModules(docs, anns))

	ports := module.MustPortsOf[reviewmod.Ports](mod)

	if err := ports.Worker.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("review worker failed")
	}
}
