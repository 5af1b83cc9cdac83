// Package domain holds DTOs for review http and service contracts
package domain

// SubmitInput requests a fresh look at one annotation
type SubmitInput struct {
	AnnotationID string `json:"annotation_id" validate:"required,uuid4" example:"5a0b9f36-1d53-4f3a-9f0e-2f9d4f2b7c11"`
	Reason       string `json:"reason" validate:"required,min=3,max=500" example:"span looks like a version string, not a date"`
}

// StatusInput is the input for fetching review state.
// Status is a POST in this module so we bind from json not path
type StatusInput struct {
	ReviewID string `json:"review_id" validate:"required,uuid4" example:"7c2f1ab8-30aa-4be2-8f6e-d41c6a9b0d42"`
}

// Review reports one review job
type Review struct {
	ReviewID      string `json:"review_id"`
	AnnotationID  string `json:"annotation_id"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	LastError     string `json:"last_error,omitempty"`
	CheckedDetver *int   `json:"checked_detver,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	FinishedAt    string `json:"finished_at,omitempty"`
}
