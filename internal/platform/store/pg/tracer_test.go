package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestOneline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"select 1", "select 1"},
		{"  select   1  ", "select 1"},
		{"SELECT\t*\nFROM\r\tmarkers WHERE  lemma =  $1", "SELECT * FROM markers WHERE lemma = $1"},
		{"\n\nINSERT\n\tINTO docs  VALUES ($1)\r\n", "INSERT INTO docs VALUES ($1)"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := oneline(tt.in); got != tt.want {
			t.Fatalf("oneline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type traceLine struct {
	Level     string  `json:"level"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Slow      bool    `json:"slow"`
	SQL       string  `json:"sql"`
	Args      any     `json:"args"`
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	Component string  `json:"component"`
}

func emitOne(t *testing.T, buf *bytes.Buffer, tr QueryTracer, ev QueryEvent) traceLine {
	t.Helper()
	buf.Reset()
	tr.OnQuery(context.Background(), ev)

	var line traceLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal trace line: %v\nraw=%s", err, buf.String())
	}
	return line
}

func TestTracer_InfoForNormalWarnForSlow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))

	ev := QueryEvent{
		SQL:       "SELECT  id \n FROM  documents\tWHERE lang = $1",
		Args:      []any{1, "en"},
		ElapsedUS: 12345,
		Err:       errors.New("boom"),
	}

	line := emitOne(t, &buf, tr, ev)
	if line.Level != "info" {
		t.Fatalf("level = %q, want info", line.Level)
	}
	if line.Slow {
		t.Fatal("slow flag should mirror the event")
	}
	if line.SQL != "SELECT id FROM documents WHERE lang = $1" {
		t.Fatalf("sql not flattened: %q", line.SQL)
	}
	if math.Abs(line.ElapsedMS-12.345) > 0.0005 {
		t.Fatalf("elapsed_ms = %v, want 12.345", line.ElapsedMS)
	}
	if line.Error != "boom" {
		t.Fatalf("error = %q", line.Error)
	}
	if line.Message != "pg query" {
		t.Fatalf("message = %q", line.Message)
	}
	if line.Component != "pg" {
		t.Fatalf("component = %q", line.Component)
	}
	arr, ok := line.Args.([]any)
	if !ok || len(arr) != 2 || arr[0].(float64) != 1 || arr[1].(string) != "en" {
		t.Fatalf("args = %#v", line.Args)
	}

	ev.Slow = true
	line = emitOne(t, &buf, tr, ev)
	if line.Level != "warn" {
		t.Fatalf("level = %q, want warn for slow statement", line.Level)
	}
	if !line.Slow {
		t.Fatal("slow flag lost on warn path")
	}
}

func TestTracer_PinsOwnLevel(t *testing.T) {
	t.Parallel()

	// a root at error level would normally swallow info lines
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	line := emitOne(t, &buf, tr, QueryEvent{SQL: "SELECT 1", ElapsedUS: 10})
	if line.Message != "pg query" {
		t.Fatalf("trace line suppressed by root level: %q", buf.String())
	}
}
