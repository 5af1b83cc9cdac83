package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"marginalia/internal/platform/config"
	"marginalia/internal/platform/net/middleware"
)

// CommonStack is the baseline middleware slice every mounted API gets.
// Order matters: ids first so the access log and recovery can report them.
// CORE_API_CORS_ORIGINS narrows the allowed origins; unset means any
func CommonStack() []func(http.Handler) http.Handler {
	const (
		slowRequest = 500 * time.Millisecond
		hardTimeout = 30 * time.Second
	)
	origins := config.New().Prefix("CORE_API_").MayCSV("CORS_ORIGINS", nil)
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: slowRequest}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(hardTimeout),
	}
}
