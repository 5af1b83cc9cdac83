// Package logger wraps zerolog behind a small process-wide facade.
// Everything downstream logs through Get, Named, or C; nothing else in the
// tree should touch zerolog configuration directly
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"marginalia/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the root logger
type Options struct {
	Level        string
	Format       string
	Service      string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through the raw config view, which itself never logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       strings.ToLower(rc.Get("LEVEL", "debug")),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", ""),
		Component:   rc.Get("COMPONENT", ""),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	setup  sync.Once
	root   atomic.Pointer[zerolog.Logger]
	inited atomic.Bool
)

// Logger aliases zerolog.Logger so call sites stay decoupled from the import
type Logger = zerolog.Logger

// Get returns the process root logger, initializing from env on first use
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Init builds the root logger. Only the first call wins; later calls are no-ops
func Init(opt Options) {
	setup.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		l := zerolog.New(sinkFor(opt)).Level(levelOf(opt.Level)).
			With().Timestamp().Logger()
		l = stamped(l, opt)

		if opt.WithCaller {
			l = l.With().Caller().Logger()
		}
		if opt.SampleEvery > 1 {
			l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}

		root.Store(&l)
		inited.Store(true)
	})
}

// sinkFor picks the output writer, wrapping it for console format
func sinkFor(opt Options) io.Writer {
	out := io.Writer(os.Stdout)
	if opt.Writer != nil {
		out = opt.Writer
	}
	if opt.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// stamped attaches the identity fields every line should carry
func stamped(l zerolog.Logger, opt Options) zerolog.Logger {
	lc := l.With()
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		lc = lc.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		lc = lc.Str("service", opt.Service)
	}
	if opt.Component != "" {
		lc = lc.Str("component", opt.Component)
	}
	for k, v := range opt.StaticFields {
		lc = lc.Str(k, v)
	}
	return lc.Logger()
}

// levels maps the accepted LOG_LEVEL spellings
var levels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

func levelOf(s string) zerolog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return zerolog.DebugLevel
}

type ctxKey struct{ name string }

var keyRequestID = ctxKey{"request_id"}

// WithRequestID stores the request id for C to pick up later.
// The request-id middleware seeds this once per request
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, keyRequestID, id)
}

// C returns a child logger carrying the request id from ctx, when present
func C(ctx context.Context) *Logger {
	l := Get()
	if v, ok := ctx.Value(keyRequestID).(string); ok && v != "" {
		cl := l.With().Str("request_id", v).Logger()
		return &cl
	}
	return l
}

// Named returns a child logger tagged with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	cl := Get().With().Str("component", component).Logger()
	return &cl
}
