package domain

import "time"

// DayRef names a UTC calendar day for CLI flags and tests
type DayRef struct{ Year, Month, Day int }

// UTC returns midnight UTC for the DayRef
func (d DayRef) UTC() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}
