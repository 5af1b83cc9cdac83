package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"strings"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/module"
	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	"marginalia/internal/platform/store"

	annmod "marginalia/internal/services/annotate/module"
	annotationsmod "marginalia/internal/services/annotations/module"
	docmod "marginalia/internal/services/documents/module"
	importmod "marginalia/internal/services/importer/module"
	sourcesmod "marginalia/internal/services/sources/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// parseNames merges the -files CSV with positional args into bare archive names
func parseNames(csv string, rest []string) []string {
	var names []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	for _, a := range rest {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	return names
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
			ClientTag:  "import",
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
		fFiles    = flag.String("files", "", "comma-separated archive names, e.g. notes-2025-08.jsonl.gz (positional args also accepted)")
		fPlanOnly = flag.Bool("plan-only", false, "seed import jobs for the named archives and exit without processing")
		fResume   = flag.Bool("resume", false, "ignore -files and drain any pending/error jobs")

		fWorkers  = flag.Int("workers", 4, "import concurrency")
		fRetries  = flag.Int("retries", 3, "max attempts per archive before it parks as error")
		fMaxFiles = flag.Int("max-files", 0, "stop after N archives (0 = unlimited)")

		// Annotate chaining flags
		fAnnotate = flag.Bool("annotate", false, "run the annotate resume pass after the import completes")
		fDetVer   = flag.Int("detver", 1, "detector version to stamp (when --annotate)")
	)
	flag.Parse()

	// Validate flag combos
	if *fPlanOnly && *fResume {
		l.Panic().Msg("--plan-only and --resume are mutually exclusive")
	}
	names := parseNames(*fFiles, flag.Args())
	if !*fResume && len(names) == 0 {
		l.Panic().Msg("must provide -files (unless --resume)")
	}

	// Shared deps for modules
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Surface opts to modules that read FromConfig
	mustSetEnv("CORE_IMPORT_WORKERS", strconv.Itoa(*fWorkers))
	mustSetEnv("CORE_IMPORT_RETRIES", strconv.Itoa(*fRetries))
	mustSetEnv("CORE_IMPORT_MAX_FILES", strconv.Itoa(*fMaxFiles))
	mustSetEnv("CORE_ANNOTATE_DETVER", strconv.Itoa(*fDetVer))

	// Dependency modules for the importer
	docs := docmod.New(deps)
	sources := sourcesmod.New(deps, sourcesmod.Options{})

	im := importmod.New(
		deps,
		importmod.Options{
			Workers:    *fWorkers,
			MaxRetries: *fRetries,
			MaxFiles:   *fMaxFiles,
		},
		importmod.WithDepsModules(docs, sources),
	)

	// Optional: annotate stack (when --annotate)
	var runAnnotate func(context.Context) error
	if *fAnnotate {
		anns := annotationsmod.New(deps)
		am := annmod.New(
			deps,
			annmod.Options{Detver: *fDetVer},
			annmod.WithDepsModules(docs, anns),
		)
		runAnnotate = module.MustPortsOf[annmod.Ports](am).Runner.RunResume
	}

	ctx := context.Background()
	ports := module.MustPortsOf[importmod.Ports](im)

	switch {
	case *fPlanOnly:
		if err := ports.Runner.PlanFiles(ctx, names); err != nil {
			l.Fatal().Err(err).Msg("import plan-only failed")
		}
		return

	case *fResume:
		if err := ports.Runner.RunResume(ctx); err != nil {
			l.Fatal().Err(err).Msg("import resume failed")
		}

	default:
		if err := ports.Runner.RunFiles(ctx, names); err != nil {
			l.Fatal().Err(err).Msg("import failed")
		}
	}

	// If asked, annotate everything the import just landed
	if runAnnotate != nil {
		if err := runAnnotate(ctx); err != nil {
			l.Fatal().Err(err).Msg("annotate (post-import) failed")
		}
	}
}
