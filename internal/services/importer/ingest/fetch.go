// Package ingest holds adapter shims for importer ports.
package ingest

import (
	"time"

	"marginalia/internal/modkit"
	"marginalia/internal/services/importer/domain"

	"marginalia/internal/adapters/corpus"
)

// NewFetcher constructs a domain.Fetcher from config under CORE_CORPUS_*.
// A DIR serves archives straight from disk; a BASE_URL downloads through the
// local cache. This keeps config-reading outside service and avoids passing
// platform deps into repos
func NewFetcher(deps modkit.Deps) domain.Fetcher {
	cc := deps.Cfg.Prefix("CORE_CORPUS_")

	if dir := cc.MayString("DIR", ""); dir != "" {
		return corpus.NewDirFetcher(dir)
	}

	baseURL := cc.MustString("BASE_URL")
	cacheDir := cc.MustString("CACHE_DIR")
	revalidate := cc.MayDuration("REVALIDATE_AFTER", 0)
	retainDays := cc.MayInt("RETAIN_MAX_DAYS", 0)
	retainBytes := int64(cc.MayInt("RETAIN_MAX_BYTES", 0))

	httpTO := cc.MayDuration("HTTP_TIMEOUT", 0) // 0 == no client timeout

	return corpus.NewCachedFetcher(
		cacheDir,
		corpus.NewHTTPFetcher(baseURL, httpTO),
		corpus.WithRevalidateAfter(revalidate),
		corpus.WithRetention(time.Duration(retainDays)*24*time.Hour, retainBytes),
	)
}
