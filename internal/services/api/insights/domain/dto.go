// Package domain holds DTOs for insights http and service contracts
package domain

// TimeRange defines a start and end date for queries, inclusive in UTC
type TimeRange struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02" example:"2026-08-01"`
	End   string `json:"end" validate:"required,datetime=2006-01-02" example:"2026-08-31"`
}

// KPIsInput selects the window for headline numbers
type KPIsInput struct {
	Range TimeRange `json:"range"`
}

// KPIsResp carries headline numbers for the window
type KPIsResp struct {
	Day         string  `json:"day" example:"2026-08-01"`
	Annotations int64   `json:"annotations" example:"5120"`
	Documents   int64   `json:"documents" example:"1900"`
	Sources     int64   `json:"sources" example:"14"`
	Density     float64 `json:"density,omitempty" example:"2.69"`
}

// TimeseriesInput selects a bucketed series of annotation volume
type TimeseriesInput struct {
	Range    TimeRange `json:"range"`
	Interval string    `json:"interval,omitempty" validate:"omitempty,oneof=auto hour day week month" example:"day"`
	TZ       string    `json:"tz,omitempty" validate:"omitempty,max=64" example:"UTC"`
	// optional filters
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=range regex action date link address phone_number transit_information"`
	SourceID string `json:"source_id,omitempty" validate:"omitempty,uuid4"`
}

// TimeseriesPoint is one bucket of the series
type TimeseriesPoint struct {
	T           string  `json:"t" example:"2026-08-01"`
	Annotations int64   `json:"annotations" example:"120"`
	Documents   int64   `json:"documents" example:"64"`
	Density     float64 `json:"density,omitempty" example:"1.87"`
}

// TimeseriesResp is the bucketed series
type TimeseriesResp struct {
	Interval string            `json:"interval" example:"day"`
	Series   []TimeseriesPoint `json:"series"`
}

// TopSourcesInput ranks sources by rolled-up annotation volume
type TopSourcesInput struct {
	Range TimeRange `json:"range"`
	Kind  string    `json:"kind,omitempty" validate:"omitempty,oneof=range regex action date link address phone_number transit_information"`
	Limit int       `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"20"`
}

// TopSourceRow is one ranked source
type TopSourceRow struct {
	SourceID    string `json:"source_id"`
	Annotations int64  `json:"annotations" example:"401"`
}

// TopSourcesResp lists ranked sources
type TopSourcesResp struct {
	Items []TopSourceRow `json:"items"`
}

// KindMixInput selects the window for the per-kind breakdown
type KindMixInput struct {
	Range TimeRange `json:"range"`
}

// KindMixRow is one kind's share of the window
type KindMixRow struct {
	Kind        string `json:"kind" example:"link"`
	Annotations int64  `json:"annotations" example:"2048"`
}

// KindMixResp lists per-kind totals
type KindMixResp struct {
	Items []KindMixRow `json:"items"`
}
