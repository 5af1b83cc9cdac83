// Package raw is the env reader the logger bootstraps from. It must not
// import logger or config, so it parses by hand and never reports problems
package raw

import (
	"os"
	"strings"
)

// Conf is a prefixed window onto the environment
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix narrows the view by appending p to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value, or def when missing or empty
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool reads "1", "true", or "yes" as true and anything else as false,
// falling back to def when the variable is empty
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.Get(key, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt parses an unsigned decimal, falling back to def on anything else.
// Signs are rejected on purpose; no bootstrap setting wants a negative
func (c Conf) GetInt(key string, def int) int {
	s := c.Get(key, "")
	if s == "" {
		return def
	}
	n := 0
	for _, ch := range []byte(s) {
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
