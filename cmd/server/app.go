package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/config"
	"github.com/rootcalc/rootcalc-api/internal/events"
	"github.com/rootcalc/rootcalc-api/internal/platform/metrics"
	"github.com/rootcalc/rootcalc-api/internal/platform/postgres"
	"github.com/rootcalc/rootcalc-api/internal/service"
	"github.com/rootcalc/rootcalc-api/internal/solver"
	"github.com/rootcalc/rootcalc-api/internal/store"
	"github.com/rootcalc/rootcalc-api/internal/task"
)

// TaskFactoryEventHandler is an event handler that creates tasks when events are emitted
type TaskFactoryEventHandler struct {
	taskFactory *task.ComputationTaskFactory
	taskRunner  *task.TaskRunner
	logger      *slog.Logger
}

// HandleEvent processes events by creating and submitting computation tasks
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != task.TaskTypeComputation {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		ComputationID string `json:"computation_id"`
	}

	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	computationID, err := uuid.Parse(payload.ComputationID)
	if err != nil {
		h.logger.Error("invalid computation ID",
			"error", err,
			"computation_id", payload.ComputationID,
			"event_id", event.ID)
		return fmt.Errorf("invalid computation ID: %w", err)
	}

	h.logger.Debug("creating task for computation",
		"computation_id", computationID,
		"event_id", event.ID)
	newTask, err := h.taskFactory.CreateTask(computationID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"computation_id", computationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, newTask); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", newTask.ID(),
			"computation_id", computationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", newTask.ID(),
		"computation_id", computationID,
		"event_id", event.ID)
	return nil
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	computationStore store.ComputationStore
	taskStore        task.TaskStore

	// Service interfaces
	computationService service.ComputationService

	// Solver construction
	finders *solver.Provider

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner

	// Instrumentation
	metrics *metrics.Metrics
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.computationStore = postgres.NewPostgresComputationStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Initialize the solver provider for the configured target function
	var err error
	app.finders, err = solver.NewProvider(solver.DefaultTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize solver provider: %w", err)
	}

	// Initialize metrics
	app.metrics = metrics.NewMetrics()

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Create required adapters
	computationRepoAdapter := service.NewComputationRepositoryAdapter(app.computationStore, app.db)

	// Initialize computation service, instrumented with lifecycle metrics
	computationService, err := service.NewComputationService(
		computationRepoAdapter,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create computation service: %w", err)
	}
	app.computationService = service.NewInstrumentedComputationService(
		computationService,
		app.metrics,
	)

	// Create task factory; it also resolves stored tasks during recovery
	taskFactory := task.NewComputationTaskFactory(
		app.computationService,
		app.finders,
		logger,
	)

	// Initialize and start the task runner
	app.taskRunner, err = setupTaskRunner(app, taskFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Create and register task factory event handler
	taskFactoryHandler := &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  app.taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
// Start also recovers tasks left over from a previous run, resolving stored
// rows through the factory.
func setupTaskRunner(app *application, resolver task.Resolver) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, resolver, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
