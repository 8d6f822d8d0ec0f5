package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/consent"
	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence/sqlite"
	"github.com/credentis/credentis/pkg/registry"
	"github.com/credentis/credentis/pkg/trigger"
	"github.com/credentis/credentis/pkg/trust"
	"github.com/credentis/credentis/pkg/web"
	"github.com/credentis/credentis/pkg/workflow"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store, err := sqlite.NewStore(t.TempDir()+"/test.db", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	reg := registry.New(slog.Default())
	reg.Register("test.noop", func(_ context.Context, ec *models.ActionContext, _ map[string]any, _ *slog.Logger) error {
		ec.State["touched"] = true

		return nil
	})

	executor := workflow.NewExecutor(store, store, reg, eventbus.NoopPublisher{}, slog.Default())
	workflowService := workflow.NewService(store, reg, slog.Default())

	triggerService := trigger.NewService(store, executor, eventbus.NoopPublisher{}, slog.Default())
	t.Cleanup(triggerService.Close)

	trustRepo := trust.NewRepository(store, slog.Default())
	trustEngine := trust.NewEngine(store, trust.NewMemoryCache(), slog.Default())
	consentService := consent.NewService(store, slog.Default())

	handlers := web.NewAPIHandlers(
		workflowService,
		executor,
		triggerService,
		trustEngine,
		trustRepo,
		consentService,
		store,
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(web.TenantHeader, "tenant-1")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, raw
}

func createWorkflow(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:    "receipt verification",
		Actions: []models.ActionStep{{Action: "test.noop"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.WorkflowDefinition
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	return created.ID
}

func TestWorkflowLifecycle(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	id := createWorkflow(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.WorkflowDefinition
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, "receipt verification", fetched.Name)
	assert.Equal(t, "tenant-1", fetched.TenantID)

	resp, _ = doJSON(t, app, http.MethodPut, "/workflows/"+id, web.UpdateWorkflowRequest{
		Name:    "renamed workflow",
		Actions: []models.ActionStep{{Action: "test.noop"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/workflows/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWorkflowEndpointsRequireTenantHeader(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflowValidation(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	tests := []struct {
		name    string
		payload web.CreateWorkflowRequest
	}{
		{
			name:    "name too short",
			payload: web.CreateWorkflowRequest{Name: "ab", Actions: []models.ActionStep{{Action: "test.noop"}}},
		},
		{
			name:    "no actions",
			payload: web.CreateWorkflowRequest{Name: "valid name"},
		},
		{
			name:    "step without action name",
			payload: web.CreateWorkflowRequest{Name: "valid name", Actions: []models.ActionStep{{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, _ := doJSON(t, app, http.MethodPost, "/workflows/", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestExecuteWorkflowEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	id := createWorkflow(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/execute", web.ExecuteWorkflowRequest{
		Input: map[string]any{"subjectId": "subject-1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var result web.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, string(models.RunStatusCompleted), result.Status)
	assert.Equal(t, true, result.State["touched"])
}

func TestExecuteUnknownWorkflow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/nope/execute", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "not found")
}

func TestWebhookInvoke(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	workflowID := createWorkflow(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/triggers/", map[string]any{
		"workflow_id": workflowID,
		"type":        "webhook",
		"config": map[string]any{
			"requiredFields": []string{"transactionId"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Trigger
	require.NoError(t, json.Unmarshal(body, &created))

	t.Run("missing required field", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/triggers/webhook/"+created.ID+"/invoke", map[string]any{
			"amount": 10,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "transactionId")
	})

	t.Run("successful invocation", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/triggers/webhook/"+created.ID+"/invoke", map[string]any{
			"transactionId": "tx-9",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var result trigger.WebhookResult
		require.NoError(t, json.Unmarshal(body, &result))
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, string(models.RunStatusCompleted), result.Status)
		assert.Equal(t, created.ID, result.TriggerID)
	})

	t.Run("unknown trigger", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/triggers/webhook/none/invoke", map[string]any{})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("deactivated trigger", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/triggers/"+created.ID+"/deactivate", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/triggers/webhook/"+created.ID+"/invoke", map[string]any{
			"transactionId": "tx-9",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEmitEventEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/events/emit", web.EmitEventRequest{
		EventType: "receipt.verified",
		Data:      map[string]any{"receiptId": "r-1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result trigger.EmitResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Zero(t, result.TriggeredCount, "no event triggers registered")
}

func TestTrustEndpoints(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	t.Run("score without history", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/trust/subject-1/score?model=events", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	resp, body := doJSON(t, app, http.MethodPost, "/trust/subject-1/events", web.RecordTrustEventRequest{
		EventType: "payment_completed",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var event models.TrustEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, 5.0, event.Weight, "weight defaults from the event table")

	t.Run("event sum score", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/trust/subject-1/score?model=events", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var score models.TrustScore
		require.NoError(t, json.Unmarshal(body, &score))
		assert.InDelta(t, 57.75, score.Score, 0.0001)
		assert.Equal(t, models.TrustLevelBronze, score.Level)
	})

	t.Run("driver weighted score", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/trust/subject-1/score", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var score models.TrustScore
		require.NoError(t, json.Unmarshal(body, &score))
		assert.Len(t, score.Drivers, 6)
	})

	t.Run("bad max age", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/trust/subject-1/score?max_age=soon", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestConsentEndpoints(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	capture := web.ConsentRequest{
		SubjectID: "subject-1",
		Purpose:   "credential_issuance",
		Scope:     "invoice_data",
		Duration:  "90d",
	}

	resp, body := doJSON(t, app, http.MethodPost, "/consents/", capture)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	verify := web.ConsentRequest{SubjectID: "subject-1", Purpose: "credential_issuance"}

	resp, body = doJSON(t, app, http.MethodPost, "/consents/verify", verify)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"valid":true`)

	resp, _ = doJSON(t, app, http.MethodPost, "/consents/revoke", verify)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/consents/verify", verify)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProviderEndpoints(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/providers/", web.CreateProviderRequest{
		Name:   "ecocash",
		Kind:   "payment_gateway",
		Config: map[string]any{"url": "https://gateway.example"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Provider
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, app, http.MethodGet, "/providers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"payment_gateway"`)

	resp, body = doJSON(t, app, http.MethodGet, "/providers/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"total_count":1`)

	resp, _ = doJSON(t, app, http.MethodDelete, "/providers/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/providers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProviderValidation(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/providers/", web.CreateProviderRequest{
		Name: "missing kind",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConsentCaptureRequiresDuration(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/consents/", web.ConsentRequest{
		SubjectID: "subject-1",
		Purpose:   "p",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "duration")
}
