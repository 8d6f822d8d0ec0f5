// Package mocks provides testify mock implementations of the persistence
// repository interfaces for unit tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/credentis/credentis/pkg/models"
)

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Workflows(ctx context.Context, tenantID string) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowRepository) WorkflowByID(ctx context.Context, tenantID, id string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockWorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockWorkflowRepository) DeleteWorkflow(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)

	return args.Error(0)
}

// MockRunRepository is a mock implementation of persistence.RunRepository.
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) CreateRun(ctx context.Context, run *models.WorkflowRun) error {
	args := m.Called(ctx, run)

	return args.Error(0)
}

func (m *MockRunRepository) FinishRun(ctx context.Context, runID string, status models.RunStatus, runErr string) error {
	args := m.Called(ctx, runID, status, runErr)

	return args.Error(0)
}

func (m *MockRunRepository) RecordRunStep(ctx context.Context, step *models.WorkflowRunStep) error {
	args := m.Called(ctx, step)

	return args.Error(0)
}

func (m *MockRunRepository) RunByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowRun), args.Error(1)
}

// MockTriggerRepository is a mock implementation of persistence.TriggerRepository.
type MockTriggerRepository struct {
	mock.Mock
}

func (m *MockTriggerRepository) Triggers(ctx context.Context, tenantID string) ([]*models.Trigger, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggerRepository) ActiveTriggers(ctx context.Context) ([]*models.Trigger, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggerRepository) TriggerByID(ctx context.Context, id string) (*models.Trigger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Trigger), args.Error(1)
}

func (m *MockTriggerRepository) SaveTrigger(ctx context.Context, trigger *models.Trigger) error {
	args := m.Called(ctx, trigger)

	return args.Error(0)
}

func (m *MockTriggerRepository) SetTriggerActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)

	return args.Error(0)
}

func (m *MockTriggerRepository) TouchTrigger(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)

	return args.Error(0)
}

func (m *MockTriggerRepository) DeleteTrigger(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockTrustEventRepository is a mock implementation of persistence.TrustEventRepository.
type MockTrustEventRepository struct {
	mock.Mock
}

func (m *MockTrustEventRepository) AppendTrustEvent(ctx context.Context, event *models.TrustEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockTrustEventRepository) TrustEventsBySubject(ctx context.Context, tenantID, subjectID string) ([]*models.TrustEvent, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.TrustEvent), args.Error(1)
}

func (m *MockTrustEventRepository) CachedScore(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.TrustScore), args.Error(1)
}

func (m *MockTrustEventRepository) SaveScore(ctx context.Context, score *models.TrustScore) error {
	args := m.Called(ctx, score)

	return args.Error(0)
}

// MockConsentRepository is a mock implementation of persistence.ConsentRepository.
type MockConsentRepository struct {
	mock.Mock
}

func (m *MockConsentRepository) SaveConsent(ctx context.Context, record *models.ConsentRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockConsentRepository) ConsentByID(ctx context.Context, tenantID, id string) (*models.ConsentRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ConsentRecord), args.Error(1)
}

func (m *MockConsentRepository) ActiveConsent(ctx context.Context, tenantID, subjectID, purpose string) (*models.ConsentRecord, error) {
	args := m.Called(ctx, tenantID, subjectID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ConsentRecord), args.Error(1)
}

func (m *MockConsentRepository) RevokeConsent(ctx context.Context, tenantID, subjectID, purpose string, at time.Time) error {
	args := m.Called(ctx, tenantID, subjectID, purpose, at)

	return args.Error(0)
}
