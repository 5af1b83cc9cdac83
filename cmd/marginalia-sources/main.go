package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"marginalia/internal/modkit"
	"marginalia/internal/modkit/module"
	"marginalia/internal/platform/config"
	"marginalia/internal/platform/logger"
	"marginalia/internal/platform/store"

	srcdom "marginalia/internal/services/sources/domain"
	sourcesmod "marginalia/internal/services/sources/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func parseWhen(label, v string) time.Time {
	// Accept either date or date+hour, like the annotate tool
	// - "YYYY-MM-DD" (midnight UTC)
	// - "YYYY-MM-DDTHH"
	if v == "" {
		return time.Time{}
	}
	layouts := []string{"2006-01-02T15", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			// Normalize to UTC
			if layout == "2006-01-02" {
				// midnight at start of the day
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t.UTC()
		}
		lastErr = err
	}
	panic(fmt.Errorf("bad -%s: %w", label, lastErr))
}

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
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

	// Flags
	var (
		fMode   = flag.String("mode", "worker", "sources mode: worker | seed | refresh")
		fSince  = flag.String("since", "", "seed lower bound (UTC) YYYY-MM-DD or YYYY-MM-DDTHH")
		fUntil  = flag.String("until", "", "seed upper bound (UTC) YYYY-MM-DD or YYYY-MM-DDTHH (exclusive)")
		fLimit  = flag.Int("limit", 0, "max items to process (0 = service default)")
		fBatch  = flag.Int("batch", 0, "refresh lease batch size per poll (0 = config default)")
		fTick   = flag.Duration("tick", 0, "worker poll interval (0 = config default)")
		fDryRun = flag.Bool("dryrun", false, "plan but do not write (for smoke tests)")
	)
	flag.Parse()

	// Shared deps
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	// Export a few knobs as env so the module can read via FromConfig if desired
	mustSetEnv("CORE_SOURCES_BATCH", fmt.Sprintf("%d", *fBatch))
	mustSetEnv("CORE_SOURCES_SEED_LIMIT", fmt.Sprintf("%d", *fLimit))
	mustSetEnv("CORE_SOURCES_DRY_RUN", map[bool]string{true: "1", false: "0"}[*fDryRun])

	sm := sourcesmod.New(
		deps,
		sourcesmod.Options{
			Batch:     *fBatch,
			Tick:      *fTick,
			SeedLimit: *fLimit,
			DryRun:    *fDryRun,
		},
	)

	ports := module.MustPortsOf[sourcesmod.Ports](sm)

	ctx := context.Background()

	switch *fMode {
	case "worker":
		// Run forever (until ctx cancel) refreshing sources as they come due
		if err := ports.Worker.Run(ctx); err != nil {
			l.Fatal().Err(err).Msg("sources worker failed")
		}

	case "seed":
		// Register sources found in historical documents within a window, then exit
		since := parseWhen("since", *fSince)
		until := parseWhen("until", *fUntil)
		if since.IsZero() {
			l.Panic().Msg("sources seed mode: -since is required (YYYY-MM-DD or YYYY-MM-DDTHH)")
		}

		// until optional; if zero, the sweep runs to now
		if err := ports.Seeder.SeedFromDocuments(ctx, srcdom.SeedRange{
			Since: since,
			Until: until, // may be zero
			Limit: *fLimit,
		}); err != nil {
			l.Fatal().Err(err).Msg("sources seeding failed")
		}

	case "refresh":
		// Recompute stats for sources that are due, then exit
		n, err := ports.Refresher.RefreshDue(ctx, srcdom.RefreshParams{
			Limit: *fLimit,
		})
		if err != nil {
			l.Fatal().Err(err).Msg("sources refresh sweep failed")
		}
		l.Info().Int("refreshed", n).Msg("sources refresh sweep done")

	default:
		l.Panic().Str("mode", *fMode).Msg("sources unknown -mode (expected: worker | seed | refresh)")
	}
}
