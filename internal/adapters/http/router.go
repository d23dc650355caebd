// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jlundqvist/agenda/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	taskHandler *handlers.TaskHandler,
	eventHandler *handlers.EventHandler,
	dashboardHandler *handlers.DashboardHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Task CRUD and transitions. The bulk route is registered before the
		// {id} routes so chi matches it literally.
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Post("/tasks/bulk-update", taskHandler.BulkUpdateTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Patch("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Post("/tasks/{id}/complete", taskHandler.CompleteTask)
		r.Post("/tasks/{id}/reopen", taskHandler.ReopenTask)

		// Event CRUD.
		r.Get("/events", eventHandler.ListEvents)
		r.Post("/events", eventHandler.CreateEvent)
		r.Get("/events/{id}", eventHandler.GetEvent)
		r.Patch("/events/{id}", eventHandler.UpdateEvent)
		r.Delete("/events/{id}", eventHandler.DeleteEvent)

		// Aggregated read-only views.
		r.Get("/dashboard/stats", dashboardHandler.Stats)
		r.Get("/dashboard/upcoming", dashboardHandler.Upcoming)
		r.Get("/dashboard/calendar", dashboardHandler.Calendar)
		r.Get("/dashboard/range", dashboardHandler.DateRange)
	})

	return r
}
