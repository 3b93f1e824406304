package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/events"
	"github.com/rootcalc/rootcalc-api/internal/store"
	"github.com/rootcalc/rootcalc-api/internal/task"
)

// ComputationRepository defines the repository interface for the service layer.
// This is aligned with store.ComputationStore to ensure proper separation of concerns.
type ComputationRepository interface {
	// Create saves a new computation to the store
	Create(ctx context.Context, computation *domain.Computation) error

	// GetByID retrieves a computation by its unique ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Computation, error)

	// Update saves changes to an existing computation
	Update(ctx context.Context, computation *domain.Computation) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) ComputationRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ComputationService provides computation-related operations
type ComputationService interface {
	// SubmitComputation validates the inputs, persists a pending computation,
	// and emits an event that enqueues the background root-finding task.
	// It returns as soon as the computation is recorded and the event is
	// emitted; it never waits for the computation itself.
	SubmitComputation(ctx context.Context, epsilon, guess float64) (*domain.Computation, error)

	// GetComputation retrieves a computation by its ID.
	// Returns ErrComputationNotFound for unknown IDs.
	GetComputation(ctx context.Context, id uuid.UUID) (*domain.Computation, error)

	// UpdateComputationStatus updates a computation's bookkeeping status
	UpdateComputationStatus(ctx context.Context, id uuid.UUID, status domain.ComputationStatus) error

	// RecordResult stores the computed root and marks the computation completed
	RecordResult(ctx context.Context, id uuid.UUID, root float64) error

	// RecordFailure stores the failure message and marks the computation failed
	RecordFailure(ctx context.Context, id uuid.UUID, message string) error
}

// Common sentinel errors for ComputationService
var (
	// ErrComputationNotFound indicates that the computation does not exist.
	// Unknown IDs are surfaced to the caller distinctly, never reported as
	// a pending computation.
	ErrComputationNotFound = errors.New("computation not found")
)

// ComputationServiceError wraps errors from the computation service with context.
type ComputationServiceError struct {
	// Operation is the operation that failed (e.g., "submit_computation")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ComputationServiceError.
func (e *ComputationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("computation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("computation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ComputationServiceError) Unwrap() error {
	return e.Err
}

// NewComputationServiceError creates a new ComputationServiceError.
// It returns known sentinel errors directly without wrapping.
func NewComputationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrComputationNotFound) {
		return ErrComputationNotFound
	}

	// Map store-level sentinel errors to service-level ones
	if errors.Is(err, store.ErrComputationNotFound) {
		return ErrComputationNotFound
	}

	return &ComputationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// txRunnerFunc executes a function within a database transaction. It is a
// seam for tests, which substitute a runner that skips real transactions.
type txRunnerFunc func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// computationServiceImpl implements the ComputationService interface
type computationServiceImpl struct {
	repo         ComputationRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
	runInTx      txRunnerFunc
}

// NewComputationService creates a new ComputationService.
// It returns an error if any of the required dependencies are nil.
func NewComputationService(
	repo ComputationRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (ComputationService, error) {
	if repo == nil {
		return nil, &ComputationServiceError{
			Operation: "create_service",
			Message:   "repo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &ComputationServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &computationServiceImpl{
		repo:         repo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "computation_service"),
		runInTx:      store.RunInTransaction,
	}, nil
}

// SubmitComputation creates a new computation with pending status and emits
// an event for processing. Validation failures surface before anything is
// persisted or enqueued. The computation creation runs in a transaction for
// atomicity.
func (s *computationServiceImpl) SubmitComputation(
	ctx context.Context,
	epsilon, guess float64,
) (*domain.Computation, error) {
	// 1. Build and validate the computation. Invalid inputs stop here:
	// no record, no event, no task.
	computation, err := domain.NewComputation(epsilon, guess)
	if err != nil {
		s.logger.Warn("rejected computation submission",
			"error", err,
			"epsilon", epsilon,
			"guess", guess)
		return nil, NewComputationServiceError("submit_computation", "invalid computation inputs", err)
	}

	// 2. Save the computation to the database using a transaction
	err = s.runInTx(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		if err := txRepo.Create(ctx, computation); err != nil {
			s.logger.Error("failed to create computation in transaction",
				"error", err,
				"computation_id", computation.ID)
			return NewComputationServiceError("submit_computation", "failed to save computation", err)
		}
		return nil
	})

	if err != nil {
		// Error is already wrapped in the transaction
		return nil, err
	}

	s.logger.Info("computation created with pending status",
		"computation_id", computation.ID,
		"epsilon", epsilon,
		"guess", guess)

	// 3. Create and emit a TaskRequestEvent for the background runner
	payload := struct {
		ComputationID uuid.UUID `json:"computation_id"`
	}{
		ComputationID: computation.ID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeComputation, payload)
	if err != nil {
		s.logger.Error("failed to create computation event",
			"error", err,
			"computation_id", computation.ID)
		return nil, NewComputationServiceError("submit_computation", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit computation event",
			"error", err,
			"computation_id", computation.ID,
			"event_id", event.ID)
		return nil, NewComputationServiceError("submit_computation", "failed to emit event", err)
	}

	s.logger.Info("computation event emitted",
		"computation_id", computation.ID,
		"event_id", event.ID)

	return computation, nil
}

// GetComputation retrieves a computation by its ID
func (s *computationServiceImpl) GetComputation(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Computation, error) {
	computation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrComputationNotFound) {
			return nil, ErrComputationNotFound
		}

		s.logger.Error("failed to retrieve computation",
			"error", err,
			"computation_id", id)
		return nil, NewComputationServiceError("get_computation", "failed to retrieve computation", err)
	}

	return computation, nil
}

// UpdateComputationStatus updates a computation's bookkeeping status
func (s *computationServiceImpl) UpdateComputationStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ComputationStatus,
) error {
	err := s.runInTx(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		computation, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := computation.UpdateStatus(status); err != nil {
			return err
		}

		return txRepo.Update(ctx, computation)
	})

	if err != nil {
		return NewComputationServiceError("update_computation_status", "failed to update status", err)
	}

	s.logger.Debug("computation status updated",
		"computation_id", id,
		"status", status)
	return nil
}

// RecordResult stores the computed root and marks the computation completed
func (s *computationServiceImpl) RecordResult(ctx context.Context, id uuid.UUID, root float64) error {
	err := s.runInTx(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		computation, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := computation.SetResult(root); err != nil {
			return err
		}

		return txRepo.Update(ctx, computation)
	})

	if err != nil {
		return NewComputationServiceError("record_result", "failed to record result", err)
	}

	s.logger.Info("computation result recorded",
		"computation_id", id,
		"root", root)
	return nil
}

// RecordFailure stores the failure message and marks the computation failed
func (s *computationServiceImpl) RecordFailure(ctx context.Context, id uuid.UUID, message string) error {
	err := s.runInTx(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		computation, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := computation.SetFailure(message); err != nil {
			return err
		}

		return txRepo.Update(ctx, computation)
	})

	if err != nil {
		return NewComputationServiceError("record_failure", "failed to record failure", err)
	}

	s.logger.Info("computation failure recorded",
		"computation_id", id,
		"message", message)
	return nil
}
