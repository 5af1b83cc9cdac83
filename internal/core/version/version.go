// Package version exposes the build identity stamped in at link time.
package version

import "fmt"

// Stamped by release builds; see the ldflags example on Info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo identifies a running binary in health payloads and logs.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info reports the identity of this build. Release builds stamp the
// package variables via
//
//	-ldflags "-X 'marginalia/internal/core/version.version=v0.1.0' \
//	  -X 'marginalia/internal/core/version.commit=abcd123' \
//	  -X 'marginalia/internal/core/version.date=2026-08-25'"
//
// and anything unstamped keeps its dev default.
func Info() BuildInfo {
	return BuildInfo{
		Service: "marginalia-api",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders the one-line form used in startup logs.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", b.Service, b.Version, b.Commit, b.Date)
}
