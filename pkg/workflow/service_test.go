package workflow_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/mocks"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/workflow"
)

func TestServiceCreateAssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	store := &mocks.MockWorkflowRepository{}
	store.On("SaveWorkflow", mock.Anything, mock.MatchedBy(func(wf *models.WorkflowDefinition) bool {
		return wf.ID != "" && !wf.CreatedAt.IsZero() && wf.CreatedAt.Equal(wf.UpdatedAt)
	})).Return(nil)

	service := workflow.NewService(store, nil, slog.Default())

	created, err := service.Create(context.Background(), &models.WorkflowDefinition{
		TenantID: "tenant-1",
		Name:     "receipt verification",
		Actions:  []models.ActionStep{{Action: "finance.calculate_invoice"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	store.AssertExpectations(t)
}

func TestServiceUpdateIsFullOverwrite(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.WorkflowDefinition{
		ID:        "wf-1",
		TenantID:  "tenant-1",
		Name:      "old name",
		Category:  "old category",
		CreatedAt: createdAt,
	}

	store := &mocks.MockWorkflowRepository{}
	store.On("WorkflowByID", mock.Anything, "tenant-1", "wf-1").Return(existing, nil)
	store.On("SaveWorkflow", mock.Anything, mock.MatchedBy(func(wf *models.WorkflowDefinition) bool {
		// Replacement keeps identity and creation time, everything else
		// comes from the new definition. The old category is gone.
		return wf.ID == "wf-1" &&
			wf.TenantID == "tenant-1" &&
			wf.Name == "new name" &&
			wf.Category == "" &&
			wf.CreatedAt.Equal(createdAt) &&
			wf.UpdatedAt.After(createdAt)
	})).Return(nil)

	service := workflow.NewService(store, nil, slog.Default())

	_, err := service.Update(context.Background(), "tenant-1", "wf-1", &models.WorkflowDefinition{
		Name:    "new name",
		Actions: []models.ActionStep{{Action: "trust.get_score"}},
	})
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestServiceUpdateUnknownWorkflow(t *testing.T) {
	t.Parallel()

	store := &mocks.MockWorkflowRepository{}
	store.On("WorkflowByID", mock.Anything, "tenant-1", "missing").Return(nil, persistence.ErrWorkflowNotFound)

	service := workflow.NewService(store, nil, slog.Default())

	_, err := service.Update(context.Background(), "tenant-1", "missing", &models.WorkflowDefinition{Name: "x"})
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	store.AssertNotCalled(t, "SaveWorkflow", mock.Anything, mock.Anything)
}
