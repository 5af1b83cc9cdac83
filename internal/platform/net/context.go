// Package net carries request-scoped plumbing shared by the HTTP layers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequestID stores id under chi's request-id key so both chi helpers
// and our own readers see the same value
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// RequestID returns the request id on the context, or ""
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
