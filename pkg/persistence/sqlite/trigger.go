package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) Triggers(ctx context.Context, tenantID string) ([]*models.Trigger, error) {
	var rows []triggerRow
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, persistence.NewStoreError("Triggers", tenantID, err)
	}

	return triggersFromRows(rows)
}

func (s *Store) ActiveTriggers(ctx context.Context) ([]*models.Trigger, error) {
	var rows []triggerRow
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&rows).Error; err != nil {
		return nil, persistence.NewStoreError("ActiveTriggers", "", err)
	}

	return triggersFromRows(rows)
}

func (s *Store) TriggerByID(ctx context.Context, id string) (*models.Trigger, error) {
	var row triggerRow

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrTriggerNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("TriggerByID", id, err)
	}

	return triggerFromRow(&row)
}

func (s *Store) SaveTrigger(ctx context.Context, trigger *models.Trigger) error {
	config, err := marshalJSON(trigger.Config)
	if err != nil {
		return persistence.NewStoreError("SaveTrigger", trigger.ID, err)
	}

	row := &triggerRow{
		ID:              trigger.ID,
		WorkflowID:      trigger.WorkflowID,
		TenantID:        trigger.TenantID,
		Type:            string(trigger.Type),
		Config:          config,
		IsActive:        trigger.IsActive,
		LastTriggeredAt: trigger.LastTriggeredAt,
		CreatedAt:       trigger.CreatedAt,
		UpdatedAt:       trigger.UpdatedAt,
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return persistence.NewStoreError("SaveTrigger", trigger.ID, err)
	}

	return nil
}

func (s *Store) SetTriggerActive(ctx context.Context, id string, active bool) error {
	result := s.db.WithContext(ctx).Model(&triggerRow{}).Where("id = ?", id).Updates(map[string]any{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return persistence.NewStoreError("SetTriggerActive", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrTriggerNotFound
	}

	return nil
}

func (s *Store) TouchTrigger(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&triggerRow{}).Where("id = ?", id).Update("last_triggered_at", &at)
	if result.Error != nil {
		return persistence.NewStoreError("TouchTrigger", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrTriggerNotFound
	}

	return nil
}

func (s *Store) DeleteTrigger(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&triggerRow{})
	if result.Error != nil {
		return persistence.NewStoreError("DeleteTrigger", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrTriggerNotFound
	}

	return nil
}

func triggersFromRows(rows []triggerRow) ([]*models.Trigger, error) {
	triggers := make([]*models.Trigger, 0, len(rows))

	for i := range rows {
		trigger, err := triggerFromRow(&rows[i])
		if err != nil {
			return nil, persistence.NewStoreError("Triggers", rows[i].ID, err)
		}

		triggers = append(triggers, trigger)
	}

	return triggers, nil
}

func triggerFromRow(row *triggerRow) (*models.Trigger, error) {
	config, err := unmarshalMap(row.Config)
	if err != nil {
		return nil, err
	}

	return &models.Trigger{
		ID:              row.ID,
		WorkflowID:      row.WorkflowID,
		TenantID:        row.TenantID,
		Type:            models.TriggerType(row.Type),
		Config:          config,
		IsActive:        row.IsActive,
		LastTriggeredAt: row.LastTriggeredAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
