package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/enterprisearena/arena/internal/adapter/otel"
	"github.com/enterprisearena/arena/internal/domain"
	"github.com/enterprisearena/arena/internal/domain/platform"
	"github.com/enterprisearena/arena/internal/domain/workflow"
	"github.com/enterprisearena/arena/internal/port/broadcast"
	"github.com/enterprisearena/arena/internal/port/history"
)

// ErrTaskAborted wraps the step failure that aborted a task.
var ErrTaskAborted = errors.New("task aborted")

// Options tunes engine behavior. Zero values fall back to defaults.
type Options struct {
	MaxConcurrentTasks int
	DefaultStepTimeout time.Duration
	DefaultTaskTimeout time.Duration
	DefaultRetryDelay  time.Duration
	// RequireCompletedDeps skips a step when any dependency finished
	// in a state other than completed. Off by default: a dependent of
	// a skipped step runs with whatever context it can resolve.
	RequireCompletedDeps bool
}

func (o *Options) withDefaults() {
	if o.MaxConcurrentTasks <= 0 {
		o.MaxConcurrentTasks = 8
	}
	if o.DefaultStepTimeout <= 0 {
		o.DefaultStepTimeout = 60 * time.Second
	}
	if o.DefaultTaskTimeout <= 0 {
		o.DefaultTaskTimeout = 5 * time.Minute
	}
	if o.DefaultRetryDelay <= 0 {
		o.DefaultRetryDelay = time.Second
	}
}

// execution tracks one in-flight task for status polling and cancellation.
type execution struct {
	taskID      string
	status      workflow.Status
	currentStep string
	done        int
	total       int
	startedAt   time.Time
	cancel      context.CancelCauseFunc
}

// Engine executes tasks: it validates the dependency graph, derives the
// execution order, runs steps sequentially against platform connectors,
// and applies each step's error handling strategy.
type Engine struct {
	registry     *Registry
	history      history.Store
	broadcasters []broadcast.Broadcaster
	metrics      *otel.Metrics
	log          *slog.Logger
	opts         Options
	sem          *semaphore.Weighted

	mu     sync.RWMutex
	active map[string]*execution
}

// NewEngine creates an Engine. history may not be nil; broadcasters and
// metrics are optional.
func NewEngine(registry *Registry, store history.Store, log *slog.Logger, opts Options) *Engine {
	opts.withDefaults()
	return &Engine{
		registry: registry,
		history:  store,
		log:      log,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrentTasks)),
		active:   make(map[string]*execution),
	}
}

// AddBroadcaster registers a lifecycle event sink.
func (e *Engine) AddBroadcaster(b broadcast.Broadcaster) {
	e.broadcasters = append(e.broadcasters, b)
}

// SetMetrics attaches metric instruments.
func (e *Engine) SetMetrics(m *otel.Metrics) {
	e.metrics = m
}

// ExecuteTask runs the task to completion and returns its result.
//
// The returned error is non-nil only for structural problems (invalid
// definition, concurrency limit wait interrupted); step failures are
// reported through the result's status and error fields.
func (e *Engine) ExecuteTask(ctx context.Context, task *workflow.Task) (*workflow.TaskResult, error) {
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validate task %s: %w", task.ID, err)
	}
	order, err := workflow.Order(task.Steps, task.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("order task %s: %w", task.ID, err)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire execution slot: %w", err)
	}
	defer e.sem.Release(1)

	executionID := uuid.NewString()

	timeout := task.Timeout.Std()
	if timeout <= 0 {
		timeout = e.opts.DefaultTaskTimeout
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	exec := &execution{
		taskID:    task.ID,
		status:    workflow.StatusRunning,
		total:     len(task.Steps),
		startedAt: time.Now(),
		cancel:    cancel,
	}
	e.mu.Lock()
	e.active[executionID] = exec
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.active, executionID)
		e.mu.Unlock()
	}()

	return e.run(ctx, executionID, exec, task, order), nil
}

// StartTask begins an asynchronous execution and returns its id. The
// execution continues even if the caller's context is cancelled; use
// CancelExecution to stop it.
func (e *Engine) StartTask(ctx context.Context, task *workflow.Task) (string, error) {
	if err := task.Validate(); err != nil {
		return "", fmt.Errorf("validate task %s: %w", task.ID, err)
	}
	order, err := workflow.Order(task.Steps, task.Dependencies)
	if err != nil {
		return "", fmt.Errorf("order task %s: %w", task.ID, err)
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire execution slot: %w", err)
	}

	executionID := uuid.NewString()

	timeout := task.Timeout.Std()
	if timeout <= 0 {
		timeout = e.opts.DefaultTaskTimeout
	}
	runCtx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))

	exec := &execution{
		taskID:    task.ID,
		status:    workflow.StatusRunning,
		total:     len(task.Steps),
		startedAt: time.Now(),
		cancel:    cancel,
	}
	e.mu.Lock()
	e.active[executionID] = exec
	e.mu.Unlock()

	go func() {
		defer e.sem.Release(1)
		defer cancel(nil)
		runCtx, timeoutCancel := context.WithTimeout(runCtx, timeout)
		defer timeoutCancel()

		e.run(runCtx, executionID, exec, task, order)

		e.mu.Lock()
		delete(e.active, executionID)
		e.mu.Unlock()
	}()

	return executionID, nil
}

// CancelExecution requests cancellation of an in-flight execution.
func (e *Engine) CancelExecution(executionID string) error {
	e.mu.RLock()
	exec, ok := e.active[executionID]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("execution %q: %w", executionID, domain.ErrNotFound)
	}
	exec.cancel(errors.New("execution cancelled"))
	return nil
}

// ExecutionStatus returns the polling view of an execution, serving
// in-flight executions from engine state and finished ones from history.
func (e *Engine) ExecutionStatus(ctx context.Context, executionID string) (*workflow.ExecutionStatus, error) {
	e.mu.RLock()
	exec, ok := e.active[executionID]
	if ok {
		st := &workflow.ExecutionStatus{
			ExecutionID: executionID,
			TaskID:      exec.taskID,
			Status:      exec.status,
			CurrentStep: exec.currentStep,
			Progress:    progress(exec.done, exec.total),
			StartedAt:   exec.startedAt,
		}
		e.mu.RUnlock()
		return st, nil
	}
	e.mu.RUnlock()

	result, err := e.history.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return &workflow.ExecutionStatus{
		ExecutionID: result.ExecutionID,
		TaskID:      result.TaskID,
		Status:      result.Status,
		Progress:    progress(result.StepsCompleted+result.StepsSkipped, result.TotalSteps),
		StartedAt:   result.StartedAt,
	}, nil
}

// progress reports (completed+skipped)/total; an empty task is complete.
func progress(done, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// run executes the ordered steps and assembles the task result.
func (e *Engine) run(ctx context.Context, executionID string, exec *execution, task *workflow.Task, order []string) *workflow.TaskResult {
	start := time.Now()
	task.Status = workflow.StatusRunning
	task.StartedAt = start

	ctx, span := otel.StartTaskSpan(ctx, executionID, task.ID)
	defer span.End()

	e.log.Info("task started",
		"execution_id", executionID, "task_id", task.ID, "steps", len(order))
	e.broadcast(ctx, EventTaskStarted, TaskEvent{
		ExecutionID: executionID,
		TaskID:      task.ID,
		Status:      string(workflow.StatusRunning),
	})
	if e.metrics != nil {
		e.metrics.TasksStarted.Add(ctx, 1)
	}

	ec := workflow.NewExecutionContext()
	var abortErr error

	for _, stepID := range order {
		if err := context.Cause(ctx); err != nil {
			abortErr = err
			break
		}

		step := task.StepByID(stepID)

		e.mu.Lock()
		exec.currentStep = stepID
		e.mu.Unlock()

		if e.opts.RequireCompletedDeps && !depsCompleted(task, stepID) {
			step.Status = workflow.StepStatusSkipped
			e.noteStep(ctx, executionID, task, step)
			e.bumpDone(exec)
			continue
		}

		err := e.executeStep(ctx, executionID, task, step, ec)
		e.bumpDone(exec)
		if err != nil {
			abortErr = err
			break
		}
	}

	e.mu.Lock()
	exec.currentStep = ""
	e.mu.Unlock()

	task.EndedAt = time.Now()
	completed, failed, skipped := workflow.CountSteps(task.Steps)

	result := &workflow.TaskResult{
		ExecutionID:    executionID,
		TaskID:         task.ID,
		Name:           task.Name,
		ExecutionTime:  time.Since(start),
		StepsCompleted: completed,
		StepsFailed:    failed,
		StepsSkipped:   skipped,
		TotalSteps:     len(task.Steps),
		Results:        make(map[string]*workflow.StepResult),
		Context:        ec.Snapshot(),
		StartedAt:      start,
		EndedAt:        task.EndedAt,
	}
	for i := range task.Steps {
		if r := task.Steps[i].Result; r != nil {
			result.Results[task.Steps[i].ID] = r
		}
	}

	cause := context.Cause(ctx)
	switch {
	case abortErr != nil && cause != nil && !errors.Is(cause, context.DeadlineExceeded):
		result.Status = workflow.StatusCancelled
		result.Error = cause.Error()
	case abortErr != nil:
		result.Status = workflow.StatusFailed
		result.Error = abortErr.Error()
	default:
		result.Status = workflow.StatusCompleted
	}
	task.Status = result.Status

	e.mu.Lock()
	exec.status = result.Status
	e.mu.Unlock()

	e.finish(ctx, result)
	return result
}

// finish records the outcome: history, events, metrics, logs.
func (e *Engine) finish(ctx context.Context, result *workflow.TaskResult) {
	// The run context may already be cancelled or timed out.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.history.Save(saveCtx, result); err != nil {
		e.log.Error("history save failed", "execution_id", result.ExecutionID, "error", err)
	}

	event := TaskEvent{
		ExecutionID:    result.ExecutionID,
		TaskID:         result.TaskID,
		Status:         string(result.Status),
		Error:          result.Error,
		StepsCompleted: result.StepsCompleted,
		StepsFailed:    result.StepsFailed,
		StepsSkipped:   result.StepsSkipped,
		Progress:       progress(result.StepsCompleted+result.StepsSkipped, result.TotalSteps),
	}

	switch result.Status {
	case workflow.StatusCompleted:
		e.broadcast(saveCtx, EventTaskCompleted, event)
		if e.metrics != nil {
			e.metrics.TasksCompleted.Add(saveCtx, 1)
		}
	case workflow.StatusCancelled:
		e.broadcast(saveCtx, EventTaskCancelled, event)
		if e.metrics != nil {
			e.metrics.TasksFailed.Add(saveCtx, 1)
		}
	default:
		e.broadcast(saveCtx, EventTaskFailed, event)
		if e.metrics != nil {
			e.metrics.TasksFailed.Add(saveCtx, 1)
		}
	}
	if e.metrics != nil {
		e.metrics.TaskDuration.Record(saveCtx, result.ExecutionTime.Seconds())
	}

	e.log.Info("task finished",
		"execution_id", result.ExecutionID,
		"task_id", result.TaskID,
		"status", result.Status,
		"completed", result.StepsCompleted,
		"failed", result.StepsFailed,
		"skipped", result.StepsSkipped,
		"duration", result.ExecutionTime)
}

// depsCompleted reports whether every dependency of stepID completed.
func depsCompleted(task *workflow.Task, stepID string) bool {
	for _, dep := range task.Dependencies[stepID] {
		if s := task.StepByID(dep); s != nil && s.Status != workflow.StepStatusCompleted {
			return false
		}
	}
	return true
}

func (e *Engine) bumpDone(exec *execution) {
	e.mu.Lock()
	exec.done++
	e.mu.Unlock()
}

// executeStep runs one step, applying its error handling strategy. A nil
// return means the task may continue; a non-nil return aborts the task.
func (e *Engine) executeStep(ctx context.Context, executionID string, task *workflow.Task, step *workflow.Step, ec *workflow.ExecutionContext) error {
	handling := step.ErrorHandling
	if handling.Strategy == "" {
		handling = workflow.DefaultErrorHandling()
	}
	if handling.Strategy == workflow.StrategyRetry && handling.MaxRetries <= 0 {
		handling.MaxRetries = workflow.DefaultErrorHandling().MaxRetries
	}
	if handling.RetryDelay <= 0 {
		handling.RetryDelay = workflow.Duration(e.opts.DefaultRetryDelay)
	}
	if handling.OnExhausted == "" {
		handling.OnExhausted = workflow.StrategyFail
	}

	for {
		err := e.attemptStep(ctx, executionID, task, step, ec)
		if err == nil {
			return nil
		}
		step.Error = err.Error()

		switch handling.Strategy {
		case workflow.StrategySkip:
			step.Status = workflow.StepStatusSkipped
			e.noteStep(ctx, executionID, task, step)
			e.log.Warn("step skipped", "execution_id", executionID, "step_id", step.ID, "error", err)
			return nil

		case workflow.StrategyContinue:
			step.Status = workflow.StepStatusFailed
			e.noteStep(ctx, executionID, task, step)
			e.log.Warn("step failed, continuing", "execution_id", executionID, "step_id", step.ID, "error", err)
			return nil

		case workflow.StrategyRetry:
			if step.RetryCount < handling.MaxRetries {
				step.RetryCount++
				if e.metrics != nil {
					e.metrics.StepRetries.Add(ctx, 1)
				}
				e.log.Warn("step retrying",
					"execution_id", executionID, "step_id", step.ID,
					"attempt", step.RetryCount, "max_retries", handling.MaxRetries, "error", err)
				if sleepErr := sleep(ctx, handling.RetryDelay.Std()); sleepErr != nil {
					step.Status = workflow.StepStatusFailed
					e.noteStep(ctx, executionID, task, step)
					return sleepErr
				}
				continue
			}
			// Retries exhausted.
			if handling.OnExhausted == workflow.StrategySkip {
				step.Status = workflow.StepStatusSkipped
				e.noteStep(ctx, executionID, task, step)
				e.log.Warn("step retries exhausted, skipping",
					"execution_id", executionID, "step_id", step.ID, "error", err)
				return nil
			}
			step.Status = workflow.StepStatusFailed
			e.noteStep(ctx, executionID, task, step)
			return fmt.Errorf("step %q failed after %d retries: %w: %w", step.ID, step.RetryCount, ErrTaskAborted, err)

		default: // StrategyFail
			step.Status = workflow.StepStatusFailed
			e.noteStep(ctx, executionID, task, step)
			return fmt.Errorf("step %q failed: %w: %w", step.ID, ErrTaskAborted, err)
		}
	}
}

// attemptStep performs a single attempt: resolve inputs, dispatch the
// platform call, validate the result, publish outputs.
func (e *Engine) attemptStep(ctx context.Context, executionID string, task *workflow.Task, step *workflow.Step, ec *workflow.ExecutionContext) error {
	step.Status = workflow.StepStatusRunning
	if step.StartedAt.IsZero() {
		step.StartedAt = time.Now()
	}
	e.noteStep(ctx, executionID, task, step)

	ctx, span := otel.StartStepSpan(ctx, step.ID, string(step.Platform), string(step.Action))
	defer span.End()

	timeout := step.Timeout.Std()
	if timeout <= 0 {
		timeout = e.opts.DefaultStepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	params := ec.ResolveInputs(step)
	res, err := e.dispatch(stepCtx, step, params)
	if err == nil {
		err = workflow.CheckResult(step, res)
	}
	step.EndedAt = time.Now()
	if e.metrics != nil {
		e.metrics.StepDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return err
	}

	step.Status = workflow.StepStatusCompleted
	step.Error = ""
	step.Result = &workflow.StepResult{
		Success:       res.Success,
		Data:          res.Data,
		RecordID:      res.RecordID,
		ExecutionTime: time.Since(start),
		Metadata:      res.Metadata,
	}
	ec.PublishOutputs(step, step.Result)
	e.noteStep(ctx, executionID, task, step)
	return nil
}

// Parameter keys consumed by dispatch itself; everything else is payload.
var reservedParams = map[string]bool{
	"object_type": true,
	"record_id":   true,
	"query":       true,
	"data":        true,
	"criteria":    true,
}

// dispatch routes a step to the connector method for its action.
//
// Non-reserved parameters merge into the payload (data for create/update,
// criteria for search) so values resolved through input mappings reach the
// platform without the definition naming a nested map.
func (e *Engine) dispatch(ctx context.Context, step *workflow.Step, params map[string]any) (*platform.Result, error) {
	conn, err := e.registry.Get(step.Platform)
	if err != nil {
		return nil, err
	}

	switch step.Action {
	case platform.ActionQuery:
		query, _ := params["query"].(string)
		return conn.ExecuteQuery(ctx, query, params)

	case platform.ActionCreate:
		objectType, _ := params["object_type"].(string)
		return conn.CreateRecord(ctx, objectType, payload(params, "data"))

	case platform.ActionUpdate:
		objectType, _ := params["object_type"].(string)
		recordID := stringParam(params, "record_id")
		return conn.UpdateRecord(ctx, objectType, recordID, payload(params, "data"))

	case platform.ActionDelete:
		objectType, _ := params["object_type"].(string)
		recordID := stringParam(params, "record_id")
		return conn.DeleteRecord(ctx, objectType, recordID)

	case platform.ActionSearch:
		objectType, _ := params["object_type"].(string)
		return conn.SearchRecords(ctx, objectType, payload(params, "criteria"))

	default:
		return nil, fmt.Errorf("step %q: unsupported action %q", step.ID, step.Action)
	}
}

// payload collects the named nested map plus all non-reserved parameters.
func payload(params map[string]any, key string) map[string]any {
	out := make(map[string]any)
	if nested, ok := params[key].(map[string]any); ok {
		for k, v := range nested {
			out[k] = v
		}
	}
	for k, v := range params {
		if !reservedParams[k] {
			out[k] = v
		}
	}
	return out
}

// stringParam returns the parameter as a string, stringifying non-string
// scalars so mapped record ids survive the trip through the context.
func stringParam(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// noteStep broadcasts a step status event.
func (e *Engine) noteStep(ctx context.Context, executionID string, task *workflow.Task, step *workflow.Step) {
	e.broadcast(ctx, EventStepStatus, StepEvent{
		ExecutionID: executionID,
		TaskID:      task.ID,
		StepID:      step.ID,
		Platform:    string(step.Platform),
		Action:      string(step.Action),
		Status:      string(step.Status),
		RetryCount:  step.RetryCount,
		Error:       step.Error,
	})
}

func (e *Engine) broadcast(ctx context.Context, eventType string, payload any) {
	for _, b := range e.broadcasters {
		b.BroadcastEvent(ctx, eventType, payload)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
