package http

import (
	"net/http"
	"strconv"

	"github.com/enterprisearena/arena/internal/domain/workflow"
	"github.com/enterprisearena/arena/internal/port/history"
	"github.com/enterprisearena/arena/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	engine  *service.Engine
	library *service.Library
	reg     *service.Registry
	history history.Store
}

// NewHandlers creates the handler set.
func NewHandlers(engine *service.Engine, library *service.Library, reg *service.Registry, store history.Store) *Handlers {
	return &Handlers{engine: engine, library: library, reg: reg, history: store}
}

// ExecuteTask starts an asynchronous execution of an inline task definition.
func (h *Handlers) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := readJSON[workflow.Task](w, r, maxRequestBodySize)
	if !ok {
		return
	}

	executionID, err := h.engine.StartTask(r.Context(), &task)
	if err != nil {
		writeDomainError(w, err, "task not accepted")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"execution_id": executionID,
		"task_id":      task.ID,
	})
}

// RunLibraryTask starts an asynchronous execution of a library task by id.
func (h *Handlers) RunLibraryTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.library.Get(urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}

	executionID, err := h.engine.StartTask(r.Context(), task)
	if err != nil {
		writeDomainError(w, err, "task not accepted")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"execution_id": executionID,
		"task_id":      task.ID,
	})
}

// ListTasks returns the task library.
func (h *Handlers) ListTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.library.List())
}

// GetTask returns one task definition.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.library.Get(urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetExecutionStatus returns the polling view of an execution.
func (h *Handlers) GetExecutionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.engine.ExecutionStatus(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "execution not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetExecutionResult returns the full recorded result of an execution.
func (h *Handlers) GetExecutionResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.history.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "execution not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelExecution requests cancellation of an in-flight execution.
func (h *Handlers) CancelExecution(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.CancelExecution(urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "execution not found or already finished")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// ListHistory returns recent task results, newest first.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	results, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err, "history unavailable")
		return
	}
	if results == nil {
		results = []workflow.TaskResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// ClearHistory removes all recorded task results.
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		writeDomainError(w, err, "history unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlatforms returns health info for every registered platform.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Platforms())
}

// Health is the liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
