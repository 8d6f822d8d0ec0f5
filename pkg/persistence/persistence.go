// Package persistence provides the data storage abstraction for workflows,
// runs, triggers, trust events, consents and providers.
package persistence

import (
	"context"
	"time"

	"github.com/credentis/credentis/pkg/models"
)

type WorkflowRepository interface {
	Workflows(ctx context.Context, tenantID string) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, tenantID, id string) (*models.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, tenantID, id string) error
}

type RunRepository interface {
	CreateRun(ctx context.Context, run *models.WorkflowRun) error
	FinishRun(ctx context.Context, runID string, status models.RunStatus, runErr string) error
	RecordRunStep(ctx context.Context, step *models.WorkflowRunStep) error
	RunByID(ctx context.Context, id string) (*models.WorkflowRun, error)
}

type TriggerRepository interface {
	Triggers(ctx context.Context, tenantID string) ([]*models.Trigger, error)
	ActiveTriggers(ctx context.Context) ([]*models.Trigger, error)
	TriggerByID(ctx context.Context, id string) (*models.Trigger, error)
	SaveTrigger(ctx context.Context, trigger *models.Trigger) error
	SetTriggerActive(ctx context.Context, id string, active bool) error
	TouchTrigger(ctx context.Context, id string, at time.Time) error
	DeleteTrigger(ctx context.Context, id string) error
}

type TrustEventRepository interface {
	AppendTrustEvent(ctx context.Context, event *models.TrustEvent) error
	TrustEventsBySubject(ctx context.Context, tenantID, subjectID string) ([]*models.TrustEvent, error)
	CachedScore(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error)
	SaveScore(ctx context.Context, score *models.TrustScore) error
}

type ConsentRepository interface {
	SaveConsent(ctx context.Context, record *models.ConsentRecord) error
	ConsentByID(ctx context.Context, tenantID, id string) (*models.ConsentRecord, error)
	ActiveConsent(ctx context.Context, tenantID, subjectID, purpose string) (*models.ConsentRecord, error)
	RevokeConsent(ctx context.Context, tenantID, subjectID, purpose string, at time.Time) error
}

type ProviderRepository interface {
	Providers(ctx context.Context, tenantID string) ([]*models.Provider, error)
	ProviderByID(ctx context.Context, tenantID, id string) (*models.Provider, error)
	SaveProvider(ctx context.Context, provider *models.Provider) error
	DeleteProvider(ctx context.Context, tenantID, id string) error
}

type Persistence interface {
	WorkflowRepository
	RunRepository
	TriggerRepository
	TrustEventRepository
	ConsentRepository
	ProviderRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
