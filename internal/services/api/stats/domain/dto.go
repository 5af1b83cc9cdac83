// Package domain holds DTOs for stats http and service contracts
package domain

// Query window and filters kept small and explicit
// Dates are ISO8601 without timezone

// TimeRange defines a start and end date for queries
type TimeRange struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02" example:"2026-08-01"`
	End   string `json:"end" validate:"required,datetime=2006-01-02" example:"2026-08-31"`
}

// ByKindInput buckets annotations by kind and day
type ByKindInput struct {
	Range TimeRange `json:"range"`
	// optional filters
	SourceID string `json:"source_id,omitempty" validate:"omitempty,uuid4" example:"b7f9a1c2-44d0-4f7a-8f33-9a2f6c1e0d55"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=active stale" example:"active"`
}

// ByKindRow represents a row in the ByKind output
type ByKindRow struct {
	Day         string `json:"day" example:"2026-08-01"`
	Kind        string `json:"kind" example:"date"`
	Annotations int64  `json:"annotations" example:"42"`
}

// Source buckets

// BySourceInput is the input for source buckets
type BySourceInput struct {
	Range TimeRange `json:"range"`
	Kind  string    `json:"kind,omitempty" validate:"omitempty,oneof=range regex action date link address phone_number transit_information" example:"link"`
}

// BySourceRow represents a row in the BySource output
type BySourceRow struct {
	SourceID    string `json:"source_id"`
	Source      string `json:"source" example:"fieldnotes"`
	Annotations int64  `json:"annotations" example:"7"`
}

// Activity buckets

// ActivityInput is the input for per-day document activity
type ActivityInput struct {
	Range    TimeRange `json:"range"`
	SourceID string    `json:"source_id,omitempty" validate:"omitempty,uuid4"`
}

// ActivityRow represents a row in the Activity output
type ActivityRow struct {
	Day         string `json:"day" example:"2026-08-01"`
	Documents   int64  `json:"documents" example:"120"`
	Annotated   int64  `json:"annotated" example:"118"`
	Annotations int64  `json:"annotations" example:"350"`
}
