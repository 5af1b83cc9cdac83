package resolve

import (
	"sort"

	"marginalia/internal/core/checking"
)

// Entry is one accepted detection: the range it covers, the checking kind
// that produced it and the typed result
type Entry struct {
	Span     checking.Span
	Checking checking.Checking
	Result   Result
}

// Map is the resolver's output: detections keyed by range, kept sorted by
// start offset. No two entries overlap
type Map struct {
	entries []Entry
}

// Len returns the number of detections
func (m *Map) Len() int { return len(m.entries) }

// Entries returns the detections ordered by start offset. The slice is the
// map's backing storage; callers must not mutate it
func (m *Map) Entries() []Entry { return m.entries }

// Get returns the entry whose range equals sp exactly
func (m *Map) Get(sp checking.Span) (Entry, bool) {
	i := m.search(sp.Start)
	if i < len(m.entries) && m.entries[i].Span == sp {
		return m.entries[i], true
	}
	return Entry{}, false
}

func (m *Map) search(start int) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].Span.Start >= start
	})
}

// insert adds an entry unless its range duplicates or overlaps an existing
// key. Since entries are sorted and disjoint, only the two neighbors of the
// insertion point can collide
func (m *Map) insert(sp checking.Span, k checking.Checking, res Result) bool {
	i := m.search(sp.Start)
	if i < len(m.entries) {
		if m.entries[i].Span == sp {
			return false
		}
		if m.entries[i].Span.Overlaps(sp) {
			return false
		}
	}
	if i > 0 && m.entries[i-1].Span.Overlaps(sp) {
		return false
	}
	m.entries = append(m.entries, Entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = Entry{Span: sp, Checking: k, Result: res}
	return true
}
