package sqlite_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/persistence/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(t.TempDir()+"/credentis.db", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return store
}

func sampleWorkflow(tenantID string) *models.WorkflowDefinition {
	now := time.Now().UTC().Truncate(time.Second)

	return &models.WorkflowDefinition{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        "receipt verification",
		Category:    "commerce",
		Description: "verify receipts and issue credentials",
		InputSchema: map[string]any{"type": "object"},
		Actions: []models.ActionStep{
			{Action: "finance.calculate_invoice", Config: map[string]any{"taxRate": 15.0}},
			{Action: "credential.issue_offer"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorkflowRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	wf := sampleWorkflow("tenant-1")
	require.NoError(t, store.SaveWorkflow(ctx, wf))

	fetched, err := store.WorkflowByID(ctx, "tenant-1", wf.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.Name, fetched.Name)
	assert.Equal(t, wf.InputSchema, fetched.InputSchema)
	require.Len(t, fetched.Actions, 2)
	assert.Equal(t, "finance.calculate_invoice", fetched.Actions[0].Action)
	assert.Equal(t, 15.0, fetched.Actions[0].Config["taxRate"])
}

func TestWorkflowTenantIsolation(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	wf := sampleWorkflow("tenant-1")
	require.NoError(t, store.SaveWorkflow(ctx, wf))

	_, err := store.WorkflowByID(ctx, "tenant-2", wf.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	other, err := store.Workflows(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err := store.Workflows(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestWorkflowDelete(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	wf := sampleWorkflow("tenant-1")
	require.NoError(t, store.SaveWorkflow(ctx, wf))
	require.NoError(t, store.DeleteWorkflow(ctx, "tenant-1", wf.ID))

	require.ErrorIs(t, store.DeleteWorkflow(ctx, "tenant-1", wf.ID), persistence.ErrWorkflowNotFound)
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	run := &models.WorkflowRun{
		ID:         uuid.New().String(),
		WorkflowID: "wf-1",
		TenantID:   "tenant-1",
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateRun(ctx, run))

	require.NoError(t, store.RecordRunStep(ctx, &models.WorkflowRunStep{
		ID:     uuid.New().String(),
		RunID:  run.ID,
		Index:  0,
		Action: "finance.calculate_invoice",
		Status: models.RunStatusCompleted,
	}))

	require.NoError(t, store.FinishRun(ctx, run.ID, models.RunStatusFailed, "gateway timeout"))

	fetched, err := store.RunByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, fetched.Status)
	assert.Equal(t, "gateway timeout", fetched.Error)
	assert.NotNil(t, fetched.FinishedAt)
}

func TestFinishUnknownRun(t *testing.T) {
	t.Parallel()

	store := setupStore(t)

	err := store.FinishRun(context.Background(), "missing", models.RunStatusCompleted, "")
	require.ErrorIs(t, err, persistence.ErrRunNotFound)
}

func TestTriggerRoundTripAndActiveFilter(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	active := &models.Trigger{
		ID:         uuid.New().String(),
		WorkflowID: "wf-1",
		TenantID:   "tenant-1",
		Type:       models.TriggerTypeEvent,
		Config:     map[string]any{"eventType": "receipt.verified"},
		IsActive:   true,
	}
	inactive := &models.Trigger{
		ID:         uuid.New().String(),
		WorkflowID: "wf-1",
		TenantID:   "tenant-1",
		Type:       models.TriggerTypeWebhook,
		IsActive:   false,
	}

	require.NoError(t, store.SaveTrigger(ctx, active))
	require.NoError(t, store.SaveTrigger(ctx, inactive))

	all, err := store.Triggers(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := store.ActiveTriggers(ctx)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)
	assert.Equal(t, "receipt.verified", activeOnly[0].Config["eventType"])

	require.NoError(t, store.SetTriggerActive(ctx, inactive.ID, true))

	activeOnly, err = store.ActiveTriggers(ctx)
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)
}

func TestTouchTrigger(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	trig := &models.Trigger{
		ID:         uuid.New().String(),
		WorkflowID: "wf-1",
		TenantID:   "tenant-1",
		Type:       models.TriggerTypeWebhook,
		IsActive:   true,
	}
	require.NoError(t, store.SaveTrigger(ctx, trig))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.TouchTrigger(ctx, trig.ID, at))

	fetched, err := store.TriggerByID(ctx, trig.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.LastTriggeredAt)
	assert.WithinDuration(t, at, *fetched.LastTriggeredAt, time.Second)
}

func TestTrustEventsAndCachedScore(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	for _, weight := range []float64{5, -2, 10} {
		require.NoError(t, store.AppendTrustEvent(ctx, &models.TrustEvent{
			ID:        uuid.New().String(),
			TenantID:  "tenant-1",
			SubjectID: "subject-1",
			EventType: "payment_completed",
			Weight:    weight,
			Metadata:  map[string]any{"channel": "ecocash"},
			CreatedAt: time.Now().UTC(),
		}))
	}

	events, err := store.TrustEventsBySubject(ctx, "tenant-1", "subject-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ecocash", events[0].Metadata["channel"])

	_, err = store.CachedScore(ctx, "tenant-1", "subject-1")
	require.ErrorIs(t, err, persistence.ErrScoreNotFound)

	score := &models.TrustScore{
		TenantID:     "tenant-1",
		SubjectID:    "subject-1",
		Score:        63.0,
		Level:        models.TrustLevelSilver,
		LastComputed: time.Now().UTC(),
	}
	require.NoError(t, store.SaveScore(ctx, score))

	cached, err := store.CachedScore(ctx, "tenant-1", "subject-1")
	require.NoError(t, err)
	assert.Equal(t, 63.0, cached.Score)
	assert.Equal(t, models.TrustLevelSilver, cached.Level)
}

func TestConsentLifecycle(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	record := &models.ConsentRecord{
		ID:         uuid.New().String(),
		TenantID:   "tenant-1",
		SubjectID:  "subject-1",
		Purpose:    "credential_issuance",
		Duration:   "90d",
		Status:     models.ConsentStatusActive,
		CapturedAt: time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().AddDate(0, 0, 90),
	}
	require.NoError(t, store.SaveConsent(ctx, record))

	fetched, err := store.ActiveConsent(ctx, "tenant-1", "subject-1", "credential_issuance")
	require.NoError(t, err)
	assert.Equal(t, record.ID, fetched.ID)

	require.NoError(t, store.RevokeConsent(ctx, "tenant-1", "subject-1", "credential_issuance", time.Now().UTC()))

	_, err = store.ActiveConsent(ctx, "tenant-1", "subject-1", "credential_issuance")
	require.ErrorIs(t, err, persistence.ErrConsentNotFound)

	revoked, err := store.ConsentByID(ctx, "tenant-1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConsentStatusRevoked, revoked.Status)
	assert.NotNil(t, revoked.RevokedAt)

	// Revoking again has nothing active to update.
	err = store.RevokeConsent(ctx, "tenant-1", "subject-1", "credential_issuance", time.Now().UTC())
	require.ErrorIs(t, err, persistence.ErrConsentNotFound)
}

func TestProviderRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	ctx := context.Background()

	provider := &models.Provider{
		ID:       uuid.New().String(),
		TenantID: "tenant-1",
		Name:     "ecocash",
		Kind:     "payment_gateway",
		Config:   map[string]any{"url": "https://gateway.example"},
	}
	require.NoError(t, store.SaveProvider(ctx, provider))

	fetched, err := store.ProviderByID(ctx, "tenant-1", provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "ecocash", fetched.Name)
	assert.Equal(t, "https://gateway.example", fetched.Config["url"])

	_, err = store.ProviderByID(ctx, "tenant-2", provider.ID)
	require.ErrorIs(t, err, persistence.ErrProviderNotFound)

	require.NoError(t, store.DeleteProvider(ctx, "tenant-1", provider.ID))
	_, err = store.ProviderByID(ctx, "tenant-1", provider.ID)
	require.ErrorIs(t, err, persistence.ErrProviderNotFound)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	store := setupStore(t)
	require.NoError(t, store.HealthCheck(context.Background()))
}
