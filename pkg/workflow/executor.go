// Package workflow implements the execution engine: a sequential
// interpreter that drives ordered, configuration-driven action pipelines
// against a shared mutable context.
package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/events"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/otelhelper"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/registry"
)

// Result carries the outcome of one run: the recorded run id and the final
// state map surfaced to the caller.
type Result struct {
	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
	State  map[string]any   `json:"state"`
}

// Executor runs workflows step by step, strictly sequentially, fail-fast.
// There is no rollback, no retry and no built-in timeout: a hung handler
// blocks its run until the caller's context is cancelled. Compensation, if
// needed, is modeled as explicit later steps.
type Executor struct {
	workflows persistence.WorkflowRepository
	runs      persistence.RunRepository
	registry  *registry.Registry
	bus       eventbus.Publisher
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewExecutor(
	workflows persistence.WorkflowRepository,
	runs persistence.RunRepository,
	reg *registry.Registry,
	bus eventbus.Publisher,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		workflows: workflows,
		runs:      runs,
		registry:  reg,
		bus:       bus,
		tracer:    otelhelper.Tracer(),
		logger:    logger.With("module", "workflow_executor"),
	}
}

// Execute runs the workflow identified by workflowID for tenantID against
// input. triggerID is recorded on the run row and may be empty for direct
// API executions.
func (e *Executor) Execute(ctx context.Context, workflowID, tenantID string, input map[string]any, triggerID string) (*Result, error) {
	logger := e.logger.With("workflow_id", workflowID, "tenant_id", tenantID)

	workflow, err := e.workflows.WorkflowByID(ctx, tenantID, workflowID)
	if err != nil {
		logger.Error("Failed to fetch workflow", "error", err)

		return nil, err
	}

	if err := e.validateInput(workflow, input); err != nil {
		return nil, err
	}

	run := &models.WorkflowRun{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		TenantID:   tenantID,
		TriggerID:  triggerID,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := e.runs.CreateRun(ctx, run); err != nil {
		logger.Error("Failed to record run", "error", err)

		return nil, err
	}

	logger = logger.With("run_id", run.ID)
	logger.Info("Starting execution of workflow", "steps", len(workflow.Actions))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.TenantIDKey, tenantID),
		attribute.String(otelhelper.RunIDKey, run.ID),
	)
	defer span.End()

	e.publish(ctx, events.RunStarted{
		BaseEvent: e.baseEvent(events.RunStartedEvent, workflow),
		RunID:     run.ID,
		TriggerID: triggerID,
	})

	ec := models.NewActionContext(workflowID, tenantID, input)

	if err := e.runSteps(ctx, workflow, run, ec, logger); err != nil {
		e.finishRun(ctx, run, models.RunStatusFailed, err.Error(), logger)
		otelhelper.RecordError(span, err)
		e.publish(ctx, events.RunFailed{
			BaseEvent: e.baseEvent(events.RunFailedEvent, workflow),
			RunID:     run.ID,
			Error:     err.Error(),
			Duration:  time.Since(run.StartedAt),
		})

		return &Result{RunID: run.ID, Status: models.RunStatusFailed, State: ec.State}, err
	}

	e.finishRun(ctx, run, models.RunStatusCompleted, "", logger)
	e.publish(ctx, events.RunCompleted{
		BaseEvent: e.baseEvent(events.RunCompletedEvent, workflow),
		RunID:     run.ID,
		Duration:  time.Since(run.StartedAt),
	})

	logger.Info("Completed execution of workflow")

	return &Result{RunID: run.ID, Status: models.RunStatusCompleted, State: ec.State}, nil
}

// runSteps drives the pipeline in definition order. A handler error aborts
// the remaining steps and propagates unchanged; state already written by
// earlier steps stays in place.
func (e *Executor) runSteps(ctx context.Context, workflow *models.WorkflowDefinition, run *models.WorkflowRun, ec *models.ActionContext, logger *slog.Logger) error {
	for i, step := range workflow.Actions {
		stepLogger := logger.With("step", i, "action", step.Action)

		handler, ok := e.registry.Get(step.Action)
		if !ok {
			err := &UnknownActionError{Action: step.Action, WorkflowID: workflow.ID, StepIndex: i}
			stepLogger.Error("Unknown action referenced by workflow")
			e.recordStep(ctx, run.ID, i, step.Action, models.RunStatusFailed, err.Error(), 0, stepLogger)

			return err
		}

		stepLogger.Info("Executing step")

		stepCtx, stepSpan := otelhelper.StartSpan(ctx, e.tracer, "workflow.step",
			attribute.String(otelhelper.ActionNameKey, step.Action),
			attribute.Int(otelhelper.StepIndexKey, i),
		)

		started := time.Now()
		err := handler(stepCtx, ec, step.Config, stepLogger)
		elapsed := time.Since(started)

		if err != nil {
			otelhelper.RecordError(stepSpan, err)
			stepSpan.End()
			stepLogger.Error("Step failed, aborting run", "error", err)
			e.recordStep(ctx, run.ID, i, step.Action, models.RunStatusFailed, err.Error(), elapsed, stepLogger)

			return err
		}

		stepSpan.End()
		e.recordStep(ctx, run.ID, i, step.Action, models.RunStatusCompleted, "", elapsed, stepLogger)
	}

	return nil
}

func (e *Executor) validateInput(workflow *models.WorkflowDefinition, input map[string]any) error {
	if len(workflow.InputSchema) == 0 {
		return nil
	}

	schemaJSON, err := json.Marshal(workflow.InputSchema)
	if err != nil {
		return err
	}

	if input == nil {
		input = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}

	return &InputValidationError{WorkflowID: workflow.ID, Violations: violations}
}

// Run bookkeeping is best-effort: a failed audit write is logged and never
// fails the run it describes.
func (e *Executor) recordStep(ctx context.Context, runID string, index int, action string, status models.RunStatus, stepErr string, elapsed time.Duration, logger *slog.Logger) {
	step := &models.WorkflowRunStep{
		ID:         uuid.New().String(),
		RunID:      runID,
		Index:      index,
		Action:     action,
		Status:     status,
		Error:      stepErr,
		DurationMS: elapsed.Milliseconds(),
	}

	if err := e.runs.RecordRunStep(ctx, step); err != nil {
		logger.Error("Failed to record run step", "error", err)
	}
}

func (e *Executor) finishRun(ctx context.Context, run *models.WorkflowRun, status models.RunStatus, runErr string, logger *slog.Logger) {
	if err := e.runs.FinishRun(ctx, run.ID, status, runErr); err != nil {
		logger.Error("Failed to finish run record", "error", err)
	}
}

func (e *Executor) publish(ctx context.Context, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, workflowEventKey(event), event); err != nil {
		e.logger.Error("Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) baseEvent(eventType events.EventType, workflow *models.WorkflowDefinition) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflow.ID,
		TenantID:   workflow.TenantID,
	}
}

func workflowEventKey(event eventbus.Event) string {
	return string(event.GetType())
}
