// Package time holds the time conversion helpers repos share. Import it
// aliased; the name collides with the standard library
package time

import (
	stdsql "database/sql"
	"time"
)

// NullPtr converts a scanned nullable timestamp into an optional time
func NullPtr(nt stdsql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
