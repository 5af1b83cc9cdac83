package corpus

import (
	"strings"
	"time"
)

// FileRef identifies a corpus archive by its bare name, e.g. "notes-2024-01.jsonl.gz"
type FileRef struct {
	Name string
}

// String returns the archive name
func (f FileRef) String() string { return f.Name }

// Valid reports whether the name is a bare file name fetchers can safely
// join to a directory or URL
func (f FileRef) Valid() bool {
	if f.Name == "" || f.Name == "." || f.Name == ".." {
		return false
	}
	return !strings.ContainsAny(f.Name, `/\`)
}

// Record is one submission as stored in a corpus archive.
// Markers are optional caller-supplied highlight ranges over Text.
type Record struct {
	Source    string         `json:"source"`
	Key       string         `json:"key"`
	Text      string         `json:"text"`
	Markers   []RecordMarker `json:"markers,omitempty"`
	Lang      string         `json:"lang,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RecordMarker is a byte range [Start,End) over Record.Text with a free-form payload
type RecordMarker struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Payload string `json:"payload"`
}
