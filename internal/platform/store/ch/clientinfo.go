package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// clientInfo identifies this process in the server-side query log.
// role is the binary's job ("api", "annotate", "import"), tag is free-form
func clientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()

	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{
		Products: []product{
			{Name: "marginalia", Version: clean(tag)},
			{Name: "role", Version: clean(role)},
			{Name: "go", Version: clean(runtime.Version())},
			{Name: "commit", Version: buildCommit()},
			{Name: "host", Version: clean(host)},
		},
	}
}

// buildCommit reports the short vcs revision stamped into the binary
func buildCommit() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

func clean(s string) string { return strings.TrimSpace(s) }
