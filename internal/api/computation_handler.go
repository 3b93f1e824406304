package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/api/shared"
	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/service"
)

// ComputationHandler handles computation-related HTTP requests
type ComputationHandler struct {
	computationService service.ComputationService
	validator          *validator.Validate
}

// NewComputationHandler creates a new ComputationHandler
func NewComputationHandler(computationService service.ComputationService) *ComputationHandler {
	return &ComputationHandler{
		computationService: computationService,
		validator:          validator.New(),
	}
}

// CreateComputation handles POST /api/computations requests.
// It accepts the computation, enqueues it for background processing, and
// returns 202 Accepted with the pending computation. The root is never
// computed inline.
func (h *ComputationHandler) CreateComputation(w http.ResponseWriter, r *http.Request) {
	var req CreateComputationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	computation, err := h.computationService.SubmitComputation(r.Context(), req.Epsilon, req.Guess)
	if err != nil {
		if isValidationError(err) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}

		slog.Error("failed to submit computation", "error", err)
		shared.RespondWithErrorAndLog(
			w, r,
			http.StatusInternalServerError,
			"Failed to submit computation",
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, computationToResponse(computation))
}

// GetComputation handles GET /api/computations/{id} requests.
// Unknown IDs return 404; they are never reported as pending.
func (h *ComputationHandler) GetComputation(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid computation ID")
		return
	}

	computation, err := h.computationService.GetComputation(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrComputationNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Computation not found")
			return
		}

		shared.RespondWithErrorAndLog(
			w, r,
			http.StatusInternalServerError,
			"Failed to retrieve computation",
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, computationToResponse(computation))
}

// isValidationError reports whether the error stems from invalid
// computation inputs rather than an infrastructure failure.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrNonPositiveEpsilon) ||
		errors.Is(err, domain.ErrNonFiniteEpsilon) ||
		errors.Is(err, domain.ErrNonFiniteGuess)
}
