// Package domain holds DTOs for resolve http and service contracts
package domain

import (
	anndom "marginalia/internal/services/annotations/domain"
)

// MarkerInput is an external annotation adopted under the action kind
type MarkerInput struct {
	Start   int    `json:"start" validate:"min=0" example:"5"`
	End     int    `json:"end" validate:"min=0" example:"12"`
	Payload string `json:"payload,omitempty" example:"mention"`
}

// KindInput names one checking kind. Range carries a byte span and regex a
// pattern; the other kinds are bare names
type KindInput struct {
	Kind    string `json:"kind" validate:"required,oneof=range regex action date link address phone_number transit_information" example:"date"`
	Start   int    `json:"start,omitempty" validate:"min=0"`
	End     int    `json:"end,omitempty" validate:"min=0"`
	Pattern string `json:"pattern,omitempty" validate:"omitempty,max=1000" example:"deadline"`
}

// ResolveInput is one text to resolve. Empty kinds means the default
// content detector set
type ResolveInput struct {
	Text    string        `json:"text" validate:"required,max=262144" example:"call 555-0100 before 2026-03-01"`
	Markers []MarkerInput `json:"markers,omitempty" validate:"omitempty,max=256,dive"`
	Kinds   []KindInput   `json:"kinds,omitempty" validate:"omitempty,max=64,dive"`
}

// Entry is one accepted detection
type Entry struct {
	Start   int            `json:"start"`
	End     int            `json:"end"`
	Kind    string         `json:"kind"`
	Payload anndom.Payload `json:"payload"`
}

// ResolveOutput is the resolved detection map in range order
type ResolveOutput struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
	Detver  int     `json:"detver"`
}
