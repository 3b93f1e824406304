package api

import (
	"time"

	"github.com/rootcalc/rootcalc-api/internal/domain"
)

// CreateComputationRequest represents the request body for submitting a
// new root-finding computation.
type CreateComputationRequest struct {
	Epsilon float64 `json:"epsilon" validate:"gt=0"`
	Guess   float64 `json:"guess"`
}

// ComputationResponse represents the response data for a computation.
// Root is present only once the computation has completed; Error is
// present only when it has failed.
type ComputationResponse struct {
	ID        string    `json:"id"`
	Epsilon   float64   `json:"epsilon"`
	Guess     float64   `json:"guess"`
	Root      *float64  `json:"root,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// computationToResponse converts a domain.Computation to a ComputationResponse
func computationToResponse(computation *domain.Computation) ComputationResponse {
	return ComputationResponse{
		ID:        computation.ID.String(),
		Epsilon:   computation.Epsilon,
		Guess:     computation.Guess,
		Root:      computation.Root,
		Status:    string(computation.Status),
		Error:     computation.ErrorMessage,
		CreatedAt: computation.CreatedAt,
		UpdatedAt: computation.UpdatedAt,
	}
}
