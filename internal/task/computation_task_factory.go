package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ComputationTaskFactory creates ComputationTask instances. It also acts as
// the Resolver for the task runner, rebuilding executable tasks from stored
// rows during recovery.
type ComputationTaskFactory struct {
	service ComputationService
	finders RootFinderProvider
	logger  *slog.Logger
}

// NewComputationTaskFactory creates a new factory for ComputationTasks
func NewComputationTaskFactory(
	service ComputationService,
	finders RootFinderProvider,
	logger *slog.Logger,
) *ComputationTaskFactory {
	return &ComputationTaskFactory{
		service: service,
		finders: finders,
		logger:  logger.With("component", "computation_task_factory"),
	}
}

// CreateTask creates a new ComputationTask for the specified computation
func (f *ComputationTaskFactory) CreateTask(computationID uuid.UUID) (Task, error) {
	task, err := NewComputationTask(
		computationID,
		f.service,
		f.finders,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Resolve implements the Resolver interface: it parses the stored payload
// and rebuilds an executable ComputationTask for it.
func (f *ComputationTaskFactory) Resolve(stored Task) (Task, error) {
	if stored.Type() != TaskTypeComputation {
		return nil, fmt.Errorf("unknown task type %q", stored.Type())
	}

	var payload computationPayload
	if err := json.Unmarshal(stored.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal computation payload: %w", err)
	}

	if payload.ComputationID == uuid.Nil {
		return nil, fmt.Errorf("stored computation task %s has no computation ID", stored.ID())
	}

	return f.CreateTask(payload.ComputationID)
}
