package raw

import "testing"

func TestGetTrimsAndDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  debug  ")
	t.Setenv("LOG_BLANK", "   ")

	lc := New().Prefix("LOG_")

	if got := lc.Get("LEVEL", "info"); got != "debug" {
		t.Fatalf("Get(LEVEL) = %q, want %q", got, "debug")
	}
	if got := lc.Get("BLANK", "info"); got != "info" {
		t.Fatalf("Get(BLANK) = %q, want default %q", got, "info")
	}
	if got := lc.Get("ABSENT", "info"); got != "info" {
		t.Fatalf("Get(ABSENT) = %q, want default %q", got, "info")
	}
}

func TestGetBool(t *testing.T) {
	lc := New().Prefix("LOG_")

	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{name: "true", value: "true", def: false, want: true},
		{name: "one", value: "1", def: false, want: true},
		{name: "yes uppercased", value: "YES", def: false, want: true},
		{name: "false", value: "false", def: true, want: false},
		{name: "zero", value: "0", def: true, want: false},
		{name: "garbage reads false", value: "maybe", def: true, want: false},
		{name: "padded true", value: "  true ", def: false, want: true},
		{name: "unset keeps default", value: "", def: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("LOG_CONSOLE", tt.value)
			}
			if got := lc.GetBool("CONSOLE", tt.def); got != tt.want {
				t.Fatalf("GetBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetInt(t *testing.T) {
	lc := New().Prefix("LOG_")

	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{name: "plain number", value: "4096", def: 0, want: 4096},
		{name: "padded number", value: "  256  ", def: 1, want: 256},
		{name: "trailing junk falls back", value: "10kb", def: 9, want: 9},
		{name: "negative falls back", value: "-5", def: 3, want: 3},
		{name: "explicit plus falls back", value: "+5", def: 3, want: 3},
		{name: "unset keeps default", value: "", def: 512, want: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("LOG_BUFFER", tt.value)
			}
			if got := lc.GetInt("BUFFER", tt.def); got != tt.want {
				t.Fatalf("GetInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestPrefixNesting(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("WORKER_LEVEL", "debug")
	t.Setenv("WORKER_LOG_LEVEL", "trace")

	root := New()
	logc := root.Prefix("LOG_")
	worker := root.Prefix("WORKER_")
	workerLog := worker.Prefix("LOG_")

	if got := logc.Get("LEVEL", ""); got != "warn" {
		t.Fatalf("LOG_ view read %q, want warn", got)
	}
	if got := worker.Get("LEVEL", ""); got != "debug" {
		t.Fatalf("WORKER_ view read %q, want debug", got)
	}
	if got := workerLog.Get("LEVEL", ""); got != "trace" {
		t.Fatalf("WORKER_LOG_ view read %q, want trace", got)
	}
}
