package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/domain"
)

// ComputationMetrics records computation lifecycle events. It is satisfied
// by the platform metrics package.
type ComputationMetrics interface {
	ComputationSubmitted()
	ComputationCompleted()
	ComputationFailed()
}

// instrumentedComputationService decorates a ComputationService with
// lifecycle metrics. Only successful state changes are counted.
type instrumentedComputationService struct {
	inner   ComputationService
	metrics ComputationMetrics
}

// NewInstrumentedComputationService wraps the given service so submissions
// and terminal outcomes are recorded in metrics.
func NewInstrumentedComputationService(
	inner ComputationService,
	metrics ComputationMetrics,
) ComputationService {
	if metrics == nil {
		return inner
	}
	return &instrumentedComputationService{
		inner:   inner,
		metrics: metrics,
	}
}

func (s *instrumentedComputationService) SubmitComputation(
	ctx context.Context,
	epsilon, guess float64,
) (*domain.Computation, error) {
	computation, err := s.inner.SubmitComputation(ctx, epsilon, guess)
	if err == nil {
		s.metrics.ComputationSubmitted()
	}
	return computation, err
}

func (s *instrumentedComputationService) GetComputation(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Computation, error) {
	return s.inner.GetComputation(ctx, id)
}

func (s *instrumentedComputationService) UpdateComputationStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ComputationStatus,
) error {
	return s.inner.UpdateComputationStatus(ctx, id, status)
}

func (s *instrumentedComputationService) RecordResult(
	ctx context.Context,
	id uuid.UUID,
	root float64,
) error {
	err := s.inner.RecordResult(ctx, id, root)
	if err == nil {
		s.metrics.ComputationCompleted()
	}
	return err
}

func (s *instrumentedComputationService) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	message string,
) error {
	err := s.inner.RecordFailure(ctx, id, message)
	if err == nil {
		s.metrics.ComputationFailed()
	}
	return err
}
