package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, wsHandler http.HandlerFunc) {
	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Task library
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Post("/tasks/{id}/run", h.RunLibraryTask)

		// Executions
		r.Post("/executions", h.ExecuteTask)
		r.Get("/executions/{id}", h.GetExecutionStatus)
		r.Get("/executions/{id}/result", h.GetExecutionResult)
		r.Post("/executions/{id}/cancel", h.CancelExecution)

		// History
		r.Get("/history", h.ListHistory)
		r.Delete("/history", h.ClearHistory)

		// Platforms
		r.Get("/platforms", h.ListPlatforms)
	})

	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}
}
