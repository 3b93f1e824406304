// Package web serves the browser-facing HTML surface: the submission form
// and the per-computation result page.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rootcalc/rootcalc-api/internal/config"
	"github.com/rootcalc/rootcalc-api/internal/domain"
	"github.com/rootcalc/rootcalc-api/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// formData is the template context for the submission form.
type formData struct {
	Epsilon string
	Guess   string
	Error   string
}

// resultData is the template context for the result page.
type resultData struct {
	Completed    bool
	Failed       bool
	Status       string
	Epsilon      float64
	Guess        float64
	Root         float64
	ErrorMessage string
}

// Handler serves the HTML form and result pages
type Handler struct {
	computationService service.ComputationService
	solverCfg          config.SolverConfig
	templates          *template.Template
	logger             *slog.Logger
}

// NewHandler creates a new web Handler. The solver configuration supplies
// the form's default epsilon and guess values.
func NewHandler(
	computationService service.ComputationService,
	solverCfg config.SolverConfig,
	logger *slog.Logger,
) (*Handler, error) {
	if computationService == nil {
		return nil, errors.New("computationService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return &Handler{
		computationService: computationService,
		solverCfg:          solverCfg,
		templates:          templates,
		logger:             logger.With("component", "web_handler"),
	}, nil
}

// ShowForm handles GET / requests and renders the submission form with
// the configured default inputs.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, formData{
		Epsilon: formatFloat(h.solverCfg.DefaultEpsilon),
		Guess:   formatFloat(h.solverCfg.DefaultGuess),
	})
}

// SubmitForm handles POST / requests. Valid submissions are enqueued and
// redirect to the result page; invalid inputs re-render the form with an
// error message and nothing is enqueued.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, http.StatusBadRequest, formData{
			Epsilon: formatFloat(h.solverCfg.DefaultEpsilon),
			Guess:   formatFloat(h.solverCfg.DefaultGuess),
			Error:   "Could not parse form submission.",
		})
		return
	}

	epsilonRaw := r.PostFormValue("epsilon")
	guessRaw := r.PostFormValue("guess")

	epsilon, err := strconv.ParseFloat(epsilonRaw, 64)
	if err != nil {
		h.renderForm(w, http.StatusBadRequest, formData{
			Epsilon: epsilonRaw,
			Guess:   guessRaw,
			Error:   "Epsilon must be a number.",
		})
		return
	}

	guess, err := strconv.ParseFloat(guessRaw, 64)
	if err != nil {
		h.renderForm(w, http.StatusBadRequest, formData{
			Epsilon: epsilonRaw,
			Guess:   guessRaw,
			Error:   "Guess must be a number.",
		})
		return
	}

	computation, err := h.computationService.SubmitComputation(r.Context(), epsilon, guess)
	if err != nil {
		if isInputError(err) {
			h.renderForm(w, http.StatusBadRequest, formData{
				Epsilon: epsilonRaw,
				Guess:   guessRaw,
				Error:   inputErrorMessage(err),
			})
			return
		}

		h.logger.Error("failed to submit computation", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/result/"+computation.ID.String(), http.StatusSeeOther)
}

// ShowResult handles GET /result/{id} requests. Completed computations
// render the result sentence, failed ones render the failure message, and
// in-progress ones render the current status. Unknown IDs return 404.
func (h *Handler) ShowResult(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	computation, err := h.computationService.GetComputation(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrComputationNotFound) {
			http.NotFound(w, r)
			return
		}

		h.logger.Error("failed to retrieve computation",
			"error", err,
			"computation_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := resultData{
		Status:  string(computation.Status),
		Epsilon: computation.Epsilon,
		Guess:   computation.Guess,
	}

	switch computation.Status {
	case domain.ComputationStatusCompleted:
		data.Completed = true
		if computation.Root != nil {
			data.Root = *computation.Root
		}
	case domain.ComputationStatusFailed:
		data.Failed = true
		data.ErrorMessage = computation.ErrorMessage
	}

	h.render(w, "result.html.tmpl", http.StatusOK, data)
}

// renderForm renders the submission form with the given status and data.
func (h *Handler) renderForm(w http.ResponseWriter, status int, data formData) {
	h.render(w, "form.html.tmpl", status, data)
}

func (h *Handler) render(w http.ResponseWriter, name string, status int, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template",
			"template", name,
			"error", err)
	}
}

// isInputError reports whether the error stems from invalid form inputs.
func isInputError(err error) bool {
	return errors.Is(err, domain.ErrNonPositiveEpsilon) ||
		errors.Is(err, domain.ErrNonFiniteEpsilon) ||
		errors.Is(err, domain.ErrNonFiniteGuess)
}

// inputErrorMessage maps input validation errors to form messages.
func inputErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNonPositiveEpsilon):
		return "Epsilon must be greater than zero."
	case errors.Is(err, domain.ErrNonFiniteEpsilon):
		return "Epsilon must be a finite number."
	case errors.Is(err, domain.ErrNonFiniteGuess):
		return "Guess must be a finite number."
	default:
		return "Invalid inputs."
	}
}

// formatFloat renders a float the way the form expects, without an
// exponent for typical defaults.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
