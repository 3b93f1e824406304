package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rootcalc/rootcalc-api/internal/api"
	apiMiddleware "github.com/rootcalc/rootcalc-api/internal/api/middleware"
	"github.com/rootcalc/rootcalc-api/internal/api/web"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create handlers using the application's services
	computationHandler := api.NewComputationHandler(app.computationService)

	webHandler, err := web.NewHandler(app.computationService, app.config.Solver, app.logger)
	if err != nil {
		// Templates are embedded in the binary; failing to parse them is a
		// programming error, not a runtime condition.
		panic(err)
	}

	// Browser-facing HTML routes
	r.Get("/", webHandler.ShowForm)
	r.Post("/", webHandler.SubmitForm)
	r.Get("/result/{id}", webHandler.ShowResult)

	// JSON API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/computations", computationHandler.CreateComputation)
		r.Get("/computations/{id}", computationHandler.GetComputation)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", app.metrics.WritePrometheus)

	return r
}
