// Package domain defines the core types and interfaces for the annotate service
package domain

import (
	"time"

	"marginalia/internal/core/checking"
)

// Input controls the scan window and batching
type Input struct {
	Since    time.Time
	Until    time.Time
	PageSize int
	Workers  int
	Detver   int
	DryRun   bool
	Kinds    []checking.Checking
}
