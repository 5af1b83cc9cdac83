package domain

import "time"

// ReviewJob is one queued or settled review of an annotation
type ReviewJob struct {
	ID           string
	AnnotationID string
	Reason       string

	// Status is pending until the worker records a verdict:
	// confirmed, stale, orphaned, or error once attempts run out
	Status        string
	Attempts      int
	LastError     string
	CheckedDetver *int

	NextAttemptAt time.Time
	LeaseExpires  time.Time
	LeasedBy      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedAt    *time.Time
}
