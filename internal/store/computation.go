package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/domain"
)

// ComputationStore defines the interface for computation data persistence.
// Version: 1.0
type ComputationStore interface {
	// Create saves a new computation to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Computation if data is invalid.
	Create(ctx context.Context, computation *domain.Computation) error

	// GetByID retrieves a computation by its unique ID.
	// Returns ErrComputationNotFound if the computation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Computation, error)

	// Update saves changes to an existing computation, including its status,
	// root, and error message.
	// Returns ErrComputationNotFound if the computation does not exist.
	// Returns validation errors if the computation data is invalid.
	Update(ctx context.Context, computation *domain.Computation) error

	// UpdateStatus updates the status of an existing computation.
	// Returns ErrComputationNotFound if the computation does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ComputationStatus) error

	// WithTx returns a new ComputationStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) ComputationStore
}
