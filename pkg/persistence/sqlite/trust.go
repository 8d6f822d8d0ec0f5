package sqlite

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

func (s *Store) AppendTrustEvent(ctx context.Context, event *models.TrustEvent) error {
	metadata, err := marshalJSON(event.Metadata)
	if err != nil {
		return persistence.NewStoreError("AppendTrustEvent", event.ID, err)
	}

	row := &trustEventRow{
		ID:        event.ID,
		TenantID:  event.TenantID,
		SubjectID: event.SubjectID,
		EventType: event.EventType,
		Weight:    event.Weight,
		Metadata:  metadata,
		CreatedAt: event.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return persistence.NewStoreError("AppendTrustEvent", event.ID, err)
	}

	return nil
}

func (s *Store) TrustEventsBySubject(ctx context.Context, tenantID, subjectID string) ([]*models.TrustEvent, error) {
	var rows []trustEventRow

	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND subject_id = ?", tenantID, subjectID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, persistence.NewStoreError("TrustEventsBySubject", subjectID, err)
	}

	events := make([]*models.TrustEvent, 0, len(rows))

	for i := range rows {
		metadata, err := unmarshalMap(rows[i].Metadata)
		if err != nil {
			return nil, persistence.NewStoreError("TrustEventsBySubject", rows[i].ID, err)
		}

		events = append(events, &models.TrustEvent{
			ID:        rows[i].ID,
			TenantID:  rows[i].TenantID,
			SubjectID: rows[i].SubjectID,
			EventType: rows[i].EventType,
			Weight:    rows[i].Weight,
			Metadata:  metadata,
			CreatedAt: rows[i].CreatedAt,
		})
	}

	return events, nil
}

func (s *Store) CachedScore(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error) {
	var row trustScoreRow

	err := s.db.WithContext(ctx).Where("tenant_id = ? AND subject_id = ?", tenantID, subjectID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence.ErrScoreNotFound
	}

	if err != nil {
		return nil, persistence.NewStoreError("CachedScore", subjectID, err)
	}

	var drivers map[string]float64
	if row.Drivers != "" {
		if err := json.Unmarshal([]byte(row.Drivers), &drivers); err != nil {
			return nil, persistence.NewStoreError("CachedScore", subjectID, err)
		}
	}

	return &models.TrustScore{
		TenantID:     row.TenantID,
		SubjectID:    row.SubjectID,
		Score:        row.Score,
		Level:        models.TrustLevel(row.Level),
		Drivers:      drivers,
		LastComputed: row.LastComputed,
	}, nil
}

func (s *Store) SaveScore(ctx context.Context, score *models.TrustScore) error {
	drivers, err := marshalJSON(score.Drivers)
	if err != nil {
		return persistence.NewStoreError("SaveScore", score.SubjectID, err)
	}

	row := &trustScoreRow{
		TenantID:     score.TenantID,
		SubjectID:    score.SubjectID,
		Score:        score.Score,
		Level:        string(score.Level),
		Drivers:      drivers,
		LastComputed: score.LastComputed,
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return persistence.NewStoreError("SaveScore", score.SubjectID, err)
	}

	return nil
}
