// Package config reads configuration from the process environment.
// Views are cheap values; build one per service prefix and pass it down
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"marginalia/internal/platform/logger"
)

// Conf is a prefixed window onto the environment. New("") sees everything;
// Prefix("CORE_API_") narrows lookups to that namespace
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix narrows the view by appending p to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (name, value string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// MustString returns the value or panics when the variable is missing.
// Reserve it for settings with no sane default, like connection URLs
func (c Conf) MustString(key string) string {
	name, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

// MayString returns the value, or def when missing or empty
func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the parsed value, or def when missing or unparsable
func (c Conf) MayInt(key string, def int) int {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Int("default", def).
			Msg("invalid int; using default")
		return def
	}
	return v
}

// MayBool returns the parsed value, or def when missing or unparsable
func (c Conf) MayBool(key string, def bool) bool {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Bool("default", def).
			Msg("invalid bool; using default")
		return def
	}
	return v
}

// MayDuration returns the parsed value, or def when missing or unparsable.
// Values use Go duration syntax ("250ms", "2s", "1h")
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Dur("default", def).
			Msg("invalid duration; using default")
		return def
	}
	return d
}

// MayCSV splits a comma-separated value into trimmed non-empty items,
// or returns def when the variable is missing or yields nothing
func (c Conf) MayCSV(key string, def []string) []string {
	_, s := c.lookup(key)
	if s == "" {
		return def
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
