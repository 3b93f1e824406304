package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/solver"
)

// Status constants for ComputationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilComputationService = errors.New("computation service cannot be nil")
	ErrNilRootFinderProvider = errors.New("root finder provider cannot be nil")
	ErrNilLogger             = errors.New("logger cannot be nil")
	ErrEmptyComputationID    = errors.New("computation ID cannot be empty")
)

// ComputationService defines the interface for computation service operations
// needed by the task. The task updates the computation record as it moves
// through its lifecycle and records the terminal outcome.
type ComputationService interface {
	// GetComputation retrieves a computation by its ID
	GetComputation(ctx context.Context, id uuid.UUID) (*domain.Computation, error)

	// UpdateComputationStatus updates a computation's bookkeeping status
	UpdateComputationStatus(ctx context.Context, id uuid.UUID, status domain.ComputationStatus) error

	// RecordResult stores the computed root and marks the computation completed
	RecordResult(ctx context.Context, id uuid.UUID, root float64) error

	// RecordFailure stores the failure message and marks the computation failed
	RecordFailure(ctx context.Context, id uuid.UUID, message string) error
}

// RootFinderProvider builds a RootFinder for a given tolerance. The root
// finder contract fixes epsilon at construction time, so each computation
// gets its own finder instance.
type RootFinderProvider interface {
	// ForEpsilon returns a RootFinder configured with the given tolerance.
	ForEpsilon(epsilon float64) (solver.RootFinder, error)
}

// computationPayload represents the serialized data stored in the task
type computationPayload struct {
	ComputationID uuid.UUID `json:"computation_id"`
}

// ComputationTask implements the Task interface for executing a single
// root-finding computation.
type ComputationTask struct {
	id            uuid.UUID
	computationID uuid.UUID
	service       ComputationService
	finders       RootFinderProvider
	logger        *slog.Logger
	status        string // Using string instead of TaskStatus to avoid circular imports
}

// NewComputationTask creates a new computation task
func NewComputationTask(
	computationID uuid.UUID,
	service ComputationService,
	finders RootFinderProvider,
	logger *slog.Logger,
) (*ComputationTask, error) {
	// Validate dependencies
	if service == nil {
		return nil, ErrNilComputationService
	}
	if finders == nil {
		return nil, ErrNilRootFinderProvider
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if computationID == uuid.Nil {
		return nil, ErrEmptyComputationID
	}

	return &ComputationTask{
		id:            uuid.New(),
		computationID: computationID,
		service:       service,
		finders:       finders,
		logger:        logger.With("task_type", TaskTypeComputation, "computation_id", computationID),
		status:        statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ComputationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ComputationTask) Type() string {
	return TaskTypeComputation
}

// Payload returns the task data as a byte slice
func (t *ComputationTask) Payload() []byte {
	payload := computationPayload{
		ComputationID: t.computationID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
// We convert the string to TaskStatus to fulfill the Task interface
func (t *ComputationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the root-finding computation: it loads the computation
// record, marks it processing, builds a root finder for the stored epsilon,
// runs it against the stored guess, and records the root or the failure.
// The computation row carries its epsilon and guess untouched through the
// whole lifecycle, so the result page never needs a separate input lookup.
// Root-finder failures are terminal: no retry, no fallback value.
func (t *ComputationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting computation task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Retrieve the computation
	computation, err := t.service.GetComputation(ctx, t.computationID)
	if err != nil {
		t.status = statusFailed
		t.logger.Error("failed to retrieve computation", "error", err)
		return fmt.Errorf("failed to retrieve computation: %w", err)
	}

	t.logger.Info("retrieved computation",
		"epsilon", computation.Epsilon,
		"guess", computation.Guess,
		"computation_status", computation.Status)

	// 2. Update computation status to processing
	err = t.service.UpdateComputationStatus(ctx, t.computationID, domain.ComputationStatusProcessing)
	if err != nil {
		t.status = statusFailed
		t.logger.Error("failed to update computation status to processing", "error", err)
		return fmt.Errorf("failed to update computation status to processing: %w", err)
	}

	// 3. Build a root finder for the stored tolerance
	finder, err := t.finders.ForEpsilon(computation.Epsilon)
	if err != nil {
		t.recordFailure(ctx, err)
		return fmt.Errorf("failed to build root finder: %w", err)
	}

	// 4. Run the root finder
	t.logger.Info("running root finder")
	root, err := finder.Find(ctx, computation.Guess)
	if err != nil {
		t.recordFailure(ctx, err)
		return fmt.Errorf("root finding failed: %w", err)
	}

	// 5. Record the result
	if err := t.service.RecordResult(ctx, t.computationID, root); err != nil {
		t.status = statusFailed
		t.logger.Error("failed to record computation result", "error", err, "root", root)
		return fmt.Errorf("failed to record computation result: %w", err)
	}

	t.status = statusCompleted
	t.logger.Info("computation task completed successfully", "root", root)
	return nil
}

// recordFailure marks both the task and the computation record as failed,
// surfacing the root-finder error verbatim so the result page can show it.
func (t *ComputationTask) recordFailure(ctx context.Context, cause error) {
	t.status = statusFailed
	t.logger.Error("computation failed", "error", cause)

	if err := t.service.RecordFailure(ctx, t.computationID, cause.Error()); err != nil {
		t.logger.Error("failed to record computation failure", "error", err)
	}
}
