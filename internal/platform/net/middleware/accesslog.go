package middleware

import (
	"net/http"
	"time"

	"marginalia/internal/platform/logger"
)

// AccessLogOptions tunes the per-request log line
type AccessLogOptions struct {
	// Requests at or above Slow log at warn; zero logs everything at info
	Slow time.Duration
}

// statusWriter notes what the handler sent so the log line can carry it
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.wrote += n
	return n, err
}

// AccessLogZerolog emits one line per request: method, path, remote,
// status, bytes and elapsed time. The logger comes off the request
// context, so lines carry the request id when that middleware ran first
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)

			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Int("status", sw.status).
				Int("bytes", sw.wrote).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
