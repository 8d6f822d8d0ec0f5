package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) CreateRun(ctx context.Context, run *models.WorkflowRun) error {
	row := &workflowRunRow{
		ID:         run.ID,
		WorkflowID: run.WorkflowID,
		TenantID:   run.TenantID,
		TriggerID:  run.TriggerID,
		Status:     string(run.Status),
		Error:      run.Error,
		StartedAt:  run.StartedAt,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return persistence.NewStoreError("CreateRun", run.ID, err)
	}

	return nil
}

func (s *Store) FinishRun(ctx context.Context, runID string, status models.RunStatus, runErr string) error {
	now := time.Now().UTC()

	result := s.db.WithContext(ctx).Model(&workflowRunRow{}).Where("id = ?", runID).Updates(map[string]any{
		"status":      string(status),
		"error":       runErr,
		"finished_at": &now,
	})
	if result.Error != nil {
		return persistence.NewStoreError("FinishRun", runID, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrRunNotFound
	}

	return nil
}

func (s *Store) RecordRunStep(ctx context.Context, step *models.WorkflowRunStep) error {
	row := &workflowRunStepRow{
		ID:         step.ID,
		RunID:      step.RunID,
		StepIndex:  step.Index,
		Action:     step.Action,
		Status:     string(step.Status),
		Error:      step.Error,
		DurationMS: step.DurationMS,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return persistence.NewStoreError("RecordRunStep", step.RunID, err)
	}

	return nil
}

func (s *Store) RunByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	var row workflowRunRow

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("RunByID", id, err)
	}

	return &models.WorkflowRun{
		ID:         row.ID,
		WorkflowID: row.WorkflowID,
		TenantID:   row.TenantID,
		TriggerID:  row.TriggerID,
		Status:     models.RunStatus(row.Status),
		Error:      row.Error,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}, nil
}
