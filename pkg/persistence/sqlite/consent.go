package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) SaveConsent(ctx context.Context, record *models.ConsentRecord) error {
	row := &consentRow{
		ID:         record.ID,
		TenantID:   record.TenantID,
		SubjectID:  record.SubjectID,
		Purpose:    record.Purpose,
		Scope:      record.Scope,
		Duration:   record.Duration,
		Status:     string(record.Status),
		CapturedAt: record.CapturedAt,
		ExpiresAt:  record.ExpiresAt,
		RevokedAt:  record.RevokedAt,
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return persistence.NewStoreError("SaveConsent", record.ID, err)
	}

	return nil
}

func (s *Store) ConsentByID(ctx context.Context, tenantID, id string) (*models.ConsentRecord, error) {
	var row consentRow

	err := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrConsentNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("ConsentByID", id, err)
	}

	return consentFromRow(&row), nil
}

// ActiveConsent returns the most recently captured active consent for the
// subject and purpose.
func (s *Store) ActiveConsent(ctx context.Context, tenantID, subjectID, purpose string) (*models.ConsentRecord, error) {
	var row consentRow

	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND subject_id = ? AND purpose = ? AND status = ?",
			tenantID, subjectID, purpose, string(models.ConsentStatusActive)).
		Order("captured_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrConsentNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("ActiveConsent", subjectID, err)
	}

	return consentFromRow(&row), nil
}

func (s *Store) RevokeConsent(ctx context.Context, tenantID, subjectID, purpose string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&consentRow{}).
		Where("tenant_id = ? AND subject_id = ? AND purpose = ? AND status = ?",
			tenantID, subjectID, purpose, string(models.ConsentStatusActive)).
		Updates(map[string]any{
			"status":     string(models.ConsentStatusRevoked),
			"revoked_at": &at,
		})
	if result.Error != nil {
		return persistence.NewStoreError("RevokeConsent", subjectID, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrConsentNotFound
	}

	return nil
}

func consentFromRow(row *consentRow) *models.ConsentRecord {
	return &models.ConsentRecord{
		ID:         row.ID,
		TenantID:   row.TenantID,
		SubjectID:  row.SubjectID,
		Purpose:    row.Purpose,
		Scope:      row.Scope,
		Duration:   row.Duration,
		Status:     models.ConsentStatus(row.Status),
		CapturedAt: row.CapturedAt,
		ExpiresAt:  row.ExpiresAt,
		RevokedAt:  row.RevokedAt,
	}
}
