package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/credentis/credentis/pkg/consent"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/trigger"
	"github.com/credentis/credentis/pkg/trust"
	"github.com/credentis/credentis/pkg/workflow"
)

// TenantHeader carries the tenant identifier on every API request.
const TenantHeader = "X-Tenant-ID"

// defaultScoreMaxAge is how stale a cached trust score may be before the
// score endpoint recomputes it.
const defaultScoreMaxAge = time.Hour

type APIHandlers struct {
	workflows *workflow.Service
	executor  *workflow.Executor
	triggers  *trigger.Service
	engine    *trust.Engine
	trust     *trust.Repository
	consents  *consent.Service
	store     persistence.Persistence
	validator *validator.Validate
}

func NewAPIHandlers(
	workflows *workflow.Service,
	executor *workflow.Executor,
	triggers *trigger.Service,
	engine *trust.Engine,
	trustRepo *trust.Repository,
	consents *consent.Service,
	store persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflows: workflows,
		executor:  executor,
		triggers:  triggers,
		engine:    engine,
		trust:     trustRepo,
		consents:  consents,
		store:     store,
		validator: validator,
	}
}

func tenantID(c fiber.Ctx) string {
	return c.Get(TenantHeader)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Credentis API is healthy"
	httpStatus := http.StatusOK

	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Credentis API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// Workflows

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	workflows, err := h.workflows.List(c.Context(), tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows, "total_count": len(workflows)})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	found, err := h.workflows.Get(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflows.Create(c.Context(), &models.WorkflowDefinition{
		TenantID:    tenant,
		Name:        req.Name,
		Category:    req.Category,
		Provider:    req.Provider,
		Description: req.Description,
		InputSchema: req.InputSchema,
		Actions:     req.Actions,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflows.Update(c.Context(), tenant, c.Params("id"), &models.WorkflowDefinition{
		TenantID:    tenant,
		Name:        req.Name,
		Category:    req.Category,
		Provider:    req.Provider,
		Description: req.Description,
		InputSchema: req.InputSchema,
		Actions:     req.Actions,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	if err := h.workflows.Delete(c.Context(), tenant, c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if req.Input == nil {
		req.Input = map[string]any{}
	}

	result, err := h.executor.Execute(c.Context(), c.Params("id"), tenant, req.Input, "")
	if err != nil {
		if result != nil {
			// The run started and failed part-way: surface the run record
			// alongside the error detail.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"run_id": result.RunID,
				"status": string(result.Status),
				"error":  err.Error(),
			})
		}

		return handleServiceError(c, err)
	}

	return c.JSON(ExecuteWorkflowResponse{
		RunID:  result.RunID,
		Status: string(result.Status),
		State:  result.State,
	})
}

// Triggers

func (h *APIHandlers) ListTriggers(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	triggers, err := h.triggers.Triggers(c.Context(), tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"triggers": triggers, "total_count": len(triggers)})
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	found, err := h.triggers.Trigger(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) CreateTrigger(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req CreateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	created, err := h.triggers.CreateTrigger(c.Context(), &models.Trigger{
		WorkflowID: req.WorkflowID,
		TenantID:   tenant,
		Type:       models.TriggerType(req.Type),
		Config:     req.Config,
		IsActive:   active,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) DeleteTrigger(c fiber.Ctx) error {
	if err := h.triggers.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ActivateTrigger(c fiber.Ctx) error {
	return h.setTriggerActive(c, true)
}

func (h *APIHandlers) DeactivateTrigger(c fiber.Ctx) error {
	return h.setTriggerActive(c, false)
}

func (h *APIHandlers) setTriggerActive(c fiber.Ctx, active bool) error {
	if err := h.triggers.SetActive(c.Context(), c.Params("id"), active); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"id": c.Params("id"), "is_active": active})
}

// InvokeWebhook is the synchronous webhook entry point. The caller blocks
// until the triggered workflow finishes.
func (h *APIHandlers) InvokeWebhook(c fiber.Ctx) error {
	rawBody := c.Body()

	payload := map[string]any{}
	if len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, &payload); err != nil {
			return badRequest(c, "Invalid JSON payload")
		}
	}

	headers := map[string]string{
		trigger.SignatureHeader: c.Get(trigger.SignatureHeader),
	}

	result, err := h.triggers.HandleWebhook(c.Context(), c.Params("id"), payload, headers, rawBody)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// EmitEvent publishes a business event. The response reports how many
// triggers matched; the dispatched workflows run detached.
func (h *APIHandlers) EmitEvent(c fiber.Ctx) error {
	var req EmitEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Data == nil {
		req.Data = map[string]any{}
	}

	result, err := h.triggers.EmitEvent(c.Context(), req.EventType, req.Data, req.Source)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// Providers

func (h *APIHandlers) ListProviders(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	providers, err := h.store.Providers(c.Context(), tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"providers": providers, "total_count": len(providers)})
}

func (h *APIHandlers) GetProvider(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	found, err := h.store.ProviderByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) CreateProvider(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req CreateProviderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	now := time.Now().UTC()
	provider := &models.Provider{
		ID:        uuid.New().String(),
		TenantID:  tenant,
		Name:      req.Name,
		Kind:      req.Kind,
		Config:    req.Config,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.SaveProvider(c.Context(), provider); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(provider)
}

func (h *APIHandlers) DeleteProvider(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	if err := h.store.DeleteProvider(c.Context(), tenant, c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Trust

// GetTrustScore serves the driver-weighted model by default. Pass
// ?model=events for the event-sum model, ?max_age=<seconds> to adjust the
// cache window.
func (h *APIHandlers) GetTrustScore(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	subjectID := c.Params("subjectId")

	if c.Query("model") == "events" {
		score, err := h.trust.Compute(c.Context(), tenant, subjectID)
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(score)
	}

	maxAge := defaultScoreMaxAge

	if raw := c.Query("max_age"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			return badRequest(c, "max_age must be a non-negative number of seconds")
		}

		maxAge = time.Duration(seconds) * time.Second
	}

	score, err := h.engine.GetScore(c.Context(), tenant, subjectID, maxAge)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(score)
}

func (h *APIHandlers) RecordTrustEvent(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req RecordTrustEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	event, err := h.trust.RecordEvent(c.Context(), tenant, c.Params("subjectId"), req.EventType, req.Weight, req.Metadata)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// Consent

func (h *APIHandlers) CaptureConsent(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req ConsentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Duration == "" {
		return badRequest(c, "duration is required")
	}

	record, err := h.consents.Capture(c.Context(), tenant, req.SubjectID, req.Purpose, req.Scope, req.Duration)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *APIHandlers) VerifyConsent(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req ConsentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.consents.Verify(c.Context(), tenant, req.SubjectID, req.Purpose)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"valid": true, "consent": record})
}

func (h *APIHandlers) RevokeConsent(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req ConsentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.consents.Revoke(c.Context(), tenant, req.SubjectID, req.Purpose); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
