package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) Providers(ctx context.Context, tenantID string) ([]*models.Provider, error) {
	var rows []providerRow
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name").Find(&rows).Error; err != nil {
		return nil, persistence.NewStoreError("Providers", tenantID, err)
	}

	providers := make([]*models.Provider, 0, len(rows))

	for i := range rows {
		provider, err := providerFromRow(&rows[i])
		if err != nil {
			return nil, persistence.NewStoreError("Providers", rows[i].ID, err)
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func (s *Store) ProviderByID(ctx context.Context, tenantID, id string) (*models.Provider, error) {
	var row providerRow

	err := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrProviderNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("ProviderByID", id, err)
	}

	return providerFromRow(&row)
}

func (s *Store) SaveProvider(ctx context.Context, provider *models.Provider) error {
	config, err := marshalJSON(provider.Config)
	if err != nil {
		return persistence.NewStoreError("SaveProvider", provider.ID, err)
	}

	row := &providerRow{
		ID:        provider.ID,
		TenantID:  provider.TenantID,
		Name:      provider.Name,
		Kind:      provider.Kind,
		Config:    config,
		CreatedAt: provider.CreatedAt,
		UpdatedAt: provider.UpdatedAt,
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return persistence.NewStoreError("SaveProvider", provider.ID, err)
	}

	return nil
}

func (s *Store) DeleteProvider(ctx context.Context, tenantID, id string) error {
	result := s.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&providerRow{})
	if result.Error != nil {
		return persistence.NewStoreError("DeleteProvider", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return persistence.ErrProviderNotFound
	}

	return nil
}

func providerFromRow(row *providerRow) (*models.Provider, error) {
	config, err := unmarshalMap(row.Config)
	if err != nil {
		return nil, err
	}

	return &models.Provider{
		ID:        row.ID,
		TenantID:  row.TenantID,
		Name:      row.Name,
		Kind:      row.Kind,
		Config:    config,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
