package pg

import (
	"context"
	"strings"

	"marginalia/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one finished statement as the adapter saw it
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement when SQL logging is on
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer builds the zerolog-backed tracer. The returned tracer pins its own
// level, so LOG_SQL output survives a quieter process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &logTracer{log: ll}
}

type logTracer struct{ log logger.Logger }

func (t *logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Info()
	if ev.Slow {
		evt = t.log.Warn()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", oneline(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneline flattens multi-line SQL into a single trimmed log field
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
