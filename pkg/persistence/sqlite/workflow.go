package sqlite

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) Workflows(ctx context.Context, tenantID string) ([]*models.WorkflowDefinition, error) {
	var rows []workflowRow
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, persistence.NewStoreError("Workflows", tenantID, err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(rows))

	for i := range rows {
		workflow, err := workflowFromRow(&rows[i])
		if err != nil {
			return nil, persistence.NewStoreError("Workflows", rows[i].ID, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (s *Store) WorkflowByID(ctx context.Context, tenantID, id string) (*models.WorkflowDefinition, error) {
	var row workflowRow

	err := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("WorkflowByID", id, err)
	}

	return workflowFromRow(&row)
}

func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	row, err := workflowToRow(workflow)
	if err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, err)
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, tenantID, id string) error {
	result := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&workflowRow{})
	if result.Error != nil {
		return persistence.NewStoreError("DeleteWorkflow", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

func workflowToRow(workflow *models.WorkflowDefinition) (*workflowRow, error) {
	schema, err := marshalJSON(workflow.InputSchema)
	if err != nil {
		return nil, err
	}

	actions, err := marshalJSON(workflow.Actions)
	if err != nil {
		return nil, err
	}

	return &workflowRow{
		ID:          workflow.ID,
		TenantID:    workflow.TenantID,
		Name:        workflow.Name,
		Category:    workflow.Category,
		Provider:    workflow.Provider,
		Description: workflow.Description,
		InputSchema: schema,
		Actions:     actions,
		CreatedAt:   workflow.CreatedAt,
		UpdatedAt:   workflow.UpdatedAt,
	}, nil
}

func workflowFromRow(row *workflowRow) (*models.WorkflowDefinition, error) {
	schema, err := unmarshalMap(row.InputSchema)
	if err != nil {
		return nil, err
	}

	var actions []models.ActionStep
	if row.Actions != "" {
		if err := json.Unmarshal([]byte(row.Actions), &actions); err != nil {
			return nil, err
		}
	}

	return &models.WorkflowDefinition{
		ID:          row.ID,
		TenantID:    row.TenantID,
		Name:        row.Name,
		Category:    row.Category,
		Provider:    row.Provider,
		Description: row.Description,
		InputSchema: schema,
		Actions:     actions,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
