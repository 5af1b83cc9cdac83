// Package strings holds the small string and slice helpers shared across
// services. Import it aliased; the name collides with the standard library
package strings

import std "strings"

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) > 0 {
		return in
	}
	return def
}

// MustString returns s unless it is blank, then panics naming what was
// missing. Use for wiring values that have no sensible fallback
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a route prefix like /stats to exactly one leading
// slash and no trailing slash. A blank prefix panics; modules may not
// mount at the root
func MustPrefix(s string) string {
	trimmed := std.Trim(std.TrimSpace(s), " /")
	if trimmed == "" {
		panic("root path is required")
	}
	return "/" + trimmed
}

// EmptyToNil collapses whitespace-only input to "", so junk values do not
// count as present
func EmptyToNil(s string) string {
	if std.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Ptr returns a pointer to s, or nil when s is empty. Pairs with
// EmptyToNil when mapping optional input onto nullable fields
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref is the inverse of Ptr
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}
