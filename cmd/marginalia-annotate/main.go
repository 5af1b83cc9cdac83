package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/module"
	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	"marginalia/internal/platform/store"

	annmod "marginalia/internal/services/annotate/module"
	annotationsmod "marginalia/internal/services/annotations/module"
	docmod "marginalia/internal/services/documents/module"
	rollupsmod "marginalia/internal/services/rollups/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
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
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientRole: "marginalia",
			ClientTag:  "annotate",
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

	var (
		startStr = flag.String("start", "", "inclusive hour, e.g. 2025-08-01T00")
		endStr   = flag.String("end", "", "exclusive hour, e.g. 2025-08-01T03")
		fResume  = flag.Bool("resume", false, "ignore -start/-end and drain documents behind the detector version")
		ver      = flag.Int("detver", 1, "detector version to stamp")
		workers  = flag.Int("workers", 2, "concurrency (>=1)")
		page     = flag.Int("page", 1000, "page size (rows)")
		kinds    = flag.String("kinds", "", "CSV of content kinds to run (empty = all)")
		dryRun   = flag.Bool("dry-run", false, "compute but do not write annotations")

		// Rollup chaining flags
		fRollup       = flag.Bool("rollup", false, "rebuild daily slices for the covered days afterwards")
		fRollupResume = flag.Bool("rollup-resume", false, "drain queued rollup days afterwards (with --resume)")
		fRollVer      = flag.Int("rollup-detver", 1, "detector version stamped into daily slices")
		fRollRet      = flag.String("rollup-retention", "full", "raw retention mode: full | aggressive | timebox:Nd")
		fRollWorkers  = flag.Int("rollup-workers", 2, "rollup worker concurrency")
		fRollLeases   = flag.Bool("rollup-leases", true, "use day leases for rollups")
	)
	flag.Parse()

	var start, end time.Time
	if !*fResume {
		if *startStr == "" || *endStr == "" {
			log.Fatal("start/end are required (hour resolution) unless --resume")
		}
		start, err = time.Parse("2006-01-02T15", *startStr)
		if err != nil {
			log.Fatalf("bad -start: %v", err)
		}
		end, err = time.Parse("2006-01-02T15", *endStr)
		if err != nil {
			log.Fatalf("bad -end: %v", err)
		}
		if !start.Before(end) {
			log.Fatal("start must be < end")
		}
	}

	// Pass CLI flags into CORE_ANNOTATE_* / CORE_ROLLUPS_* so the modules can
	// read their own config
	mustSetEnv("CORE_ANNOTATE_DETVER", strconv.Itoa(*ver))
	mustSetEnv("CORE_ANNOTATE_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("CORE_ANNOTATE_PAGE_SIZE", strconv.Itoa(*page))
	mustSetEnv("CORE_ANNOTATE_KINDS", *kinds)
	mustSetEnv("CORE_ANNOTATE_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])

	mustSetEnv("CORE_ROLLUPS_WORKERS", strconv.Itoa(*fRollWorkers))
	mustSetEnv("CORE_ROLLUPS_DET_VERSION", strconv.Itoa(*fRollVer))
	mustSetEnv("CORE_ROLLUPS_RETENTION_MODE", *fRollRet)
	mustSetEnv("CORE_ROLLUPS_LEASES", map[bool]string{true: "1", false: "0"}[*fRollLeases])

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Build dependency modules first
	docs := docmod.New(deps)
	anns := annotationsmod.New(deps)

	// Build annotate module with ports injected from deps modules
	am := annmod.New(
		deps,
		annmod.Options{
			Detver:   *ver,
			Workers:  *workers,
			PageSize: *page,
			DryRun:   *dryRun,
			Kinds:    *kinds,
		},
		annmod.WithDepsModules(docs, anns),
	)

	// rollups module is always built; the flags decide whether it runs
	ro := rollupsmod.New(deps)

	ctx := context.Background()
	ports := module.MustPortsOf[annmod.Ports](am)

	if *fResume {
		if err := ports.Runner.RunResume(ctx); err != nil {
			l.Fatal().Err(err).Msg("annotate resume failed")
		}
		if *fRollupResume {
			roPorts := module.MustPortsOf[rollupsmod.Ports](ro)
			if err := roPorts.Runner.RunResume(ctx); err != nil {
				l.Fatal().Err(err).Msg("rollup resume after annotate-resume failed")
			}
		}
		return
	}

	if err := ports.Runner.RunRange(ctx, start.UTC(), end.UTC()); err != nil {
		l.Fatal().Err(err).Msg("annotate failed")
	}
	// If asked, rebuild the daily slices touched by the range right after
	if *fRollup {
		roPorts := module.MustPortsOf[rollupsmod.Ports](ro)
		if err := roPorts.Runner.RunRange(ctx, start.UTC(), end.UTC()); err != nil {
			l.Fatal().Err(err).Msg("rollup (post-annotate) failed")
		}
	}
}
