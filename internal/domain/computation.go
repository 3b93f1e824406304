package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// ComputationStatus represents the processing state of a computation
type ComputationStatus string

// Possible computation status values
const (
	ComputationStatusPending    ComputationStatus = "pending"
	ComputationStatusProcessing ComputationStatus = "processing"
	ComputationStatusCompleted  ComputationStatus = "completed"
	ComputationStatusFailed     ComputationStatus = "failed"
)

// Common validation errors for Computation
var (
	ErrEmptyComputationID       = errors.New("computation ID cannot be empty")
	ErrNonPositiveEpsilon       = errors.New("epsilon must be a positive number")
	ErrNonFiniteEpsilon         = errors.New("epsilon must be a finite number")
	ErrNonFiniteGuess           = errors.New("guess must be a finite number")
	ErrInvalidComputationStatus = errors.New("invalid computation status")
	ErrTerminalStatus           = errors.New("computation is already in a terminal state")
)

// Computation represents a single root-finding request and its eventual
// outcome. It carries the submitted inputs (epsilon, guess) for the whole
// lifetime of the record so the result page can redisplay them without a
// separate lookup, plus the computed root once the background worker
// finishes.
type Computation struct {
	ID           uuid.UUID         `json:"id"`
	Epsilon      float64           `json:"epsilon"`
	Guess        float64           `json:"guess"`
	Root         *float64          `json:"root,omitempty"`
	Status       ComputationStatus `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewComputation creates a new Computation for the given tolerance and
// initial guess. It generates a new UUID, sets the status to pending, and
// stamps the creation/update times.
// Returns an error if validation fails.
func NewComputation(epsilon, guess float64) (*Computation, error) {
	c := &Computation{
		ID:        uuid.New(),
		Epsilon:   epsilon,
		Guess:     guess,
		Status:    ComputationStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks if the Computation has valid data.
// Returns an error if any field fails validation.
func (c *Computation) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyComputationID
	}

	if math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0) {
		return ErrNonFiniteEpsilon
	}

	if c.Epsilon <= 0 {
		return ErrNonPositiveEpsilon
	}

	if math.IsNaN(c.Guess) || math.IsInf(c.Guess, 0) {
		return ErrNonFiniteGuess
	}

	if !isValidComputationStatus(c.Status) {
		return ErrInvalidComputationStatus
	}

	return nil
}

// IsTerminal reports whether the computation has reached a terminal state.
// Completed and failed are terminal; a record never transitions out of them.
func (c *Computation) IsTerminal() bool {
	return c.Status == ComputationStatusCompleted || c.Status == ComputationStatusFailed
}

// UpdateStatus moves the computation to a new non-terminal bookkeeping state
// (pending or processing). Returns ErrTerminalStatus if the computation has
// already completed or failed, and ErrInvalidComputationStatus for unknown
// statuses.
func (c *Computation) UpdateStatus(status ComputationStatus) error {
	if !isValidComputationStatus(status) {
		return ErrInvalidComputationStatus
	}

	if c.IsTerminal() {
		return ErrTerminalStatus
	}

	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetResult records the computed root and moves the computation to the
// completed state. Returns ErrTerminalStatus if the computation is already
// terminal.
func (c *Computation) SetResult(root float64) error {
	if c.IsTerminal() {
		return ErrTerminalStatus
	}

	c.Root = &root
	c.Status = ComputationStatusCompleted
	c.ErrorMessage = ""
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetFailure records a failure message and moves the computation to the
// failed state. Returns ErrTerminalStatus if the computation is already
// terminal.
func (c *Computation) SetFailure(message string) error {
	if c.IsTerminal() {
		return ErrTerminalStatus
	}

	c.Root = nil
	c.Status = ComputationStatusFailed
	c.ErrorMessage = message
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidComputationStatus checks if the given status is a valid ComputationStatus.
func isValidComputationStatus(status ComputationStatus) bool {
	switch status {
	case ComputationStatusPending, ComputationStatusProcessing,
		ComputationStatusCompleted, ComputationStatusFailed:
		return true
	default:
		return false
	}
}
