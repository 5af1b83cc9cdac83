// Package service contains review API workflows
package service

import (
	"context"
	"time"

	"marginalia/internal/services/api/review/domain"
	rvdom "marginalia/internal/services/review/domain"
)

// Service defines the service contract for review
type Service interface{ domain.ServicePort }

// Svc implements Service over the worker-side review ports
type Svc struct {
	enq    rvdom.EnqueuePort
	status rvdom.StatusPort
}

// New creates a new review API service
func New(enq rvdom.EnqueuePort, status rvdom.StatusPort) *Svc {
	if enq == nil || status == nil {
		panic("review.Service requires enqueue and status ports")
	}
	return &Svc{enq: enq, status: status}
}

// Submit enqueues a review of one annotation
func (s *Svc) Submit(ctx context.Context, in domain.SubmitInput) (domain.Review, error) {
	j, err := s.enq.EnqueueReview(ctx, rvdom.EnqueueArgs{
		AnnotationID: in.AnnotationID,
		Reason:       in.Reason,
	})
	if err != nil {
		return domain.Review{}, err
	}
	return toDTO(j), nil
}

// Status reports current review job state
func (s *Svc) Status(ctx context.Context, in domain.StatusInput) (domain.Review, error) {
	j, err := s.status.ReviewByID(ctx, in.ReviewID)
	if err != nil {
		return domain.Review{}, err
	}
	return toDTO(j), nil
}

func toDTO(j rvdom.ReviewJob) domain.Review {
	out := domain.Review{
		ReviewID:      j.ID,
		AnnotationID:  j.AnnotationID,
		Reason:        j.Reason,
		Status:        j.Status,
		Attempts:      j.Attempts,
		LastError:     j.LastError,
		CheckedDetver: j.CheckedDetver,
		CreatedAt:     j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     j.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if j.FinishedAt != nil {
		out.FinishedAt = j.FinishedAt.UTC().Format(time.RFC3339)
	}
	return out
}
