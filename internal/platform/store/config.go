package store

import "time"

// Config collects the per backend settings Open reads
type Config struct {
	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and the SQL trace
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot ping knobs, zero means 20 attempts and 3s per ping
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientRole and ClientTag surface in server-side query logs
	ClientRole string
	ClientTag  string
}
