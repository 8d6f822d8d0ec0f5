// Package consent manages subject consent records with bounded retention.
package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

var (
	ErrConsentExpired = errors.New("consent has expired")
)

type Service struct {
	store  persistence.ConsentRepository
	logger *slog.Logger
}

func NewService(store persistence.ConsentRepository, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("module", "consent_service"),
	}
}

// Capture records an active consent for the subject and purpose, with an
// expiry computed from the retention duration.
func (s *Service) Capture(ctx context.Context, tenantID, subjectID, purpose, scope, duration string) (*models.ConsentRecord, error) {
	now := time.Now().UTC()

	expiresAt, err := ParseRetention(duration, now)
	if err != nil {
		return nil, err
	}

	record := &models.ConsentRecord{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		SubjectID:  subjectID,
		Purpose:    purpose,
		Scope:      scope,
		Duration:   duration,
		Status:     models.ConsentStatusActive,
		CapturedAt: now,
		ExpiresAt:  expiresAt,
	}

	if err := s.store.SaveConsent(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Captured consent",
		"subject_id", subjectID, "purpose", purpose, "expires_at", expiresAt)

	return record, nil
}

// Verify succeeds only when an active, unexpired consent exists for the
// subject and purpose, and returns it.
func (s *Service) Verify(ctx context.Context, tenantID, subjectID, purpose string) (*models.ConsentRecord, error) {
	record, err := s.store.ActiveConsent(ctx, tenantID, subjectID, purpose)
	if err != nil {
		return nil, err
	}

	if record.Expired(time.Now().UTC()) {
		return nil, fmt.Errorf("consent %s for purpose %q: %w", record.ID, purpose, ErrConsentExpired)
	}

	return record, nil
}

// Revoke marks the subject's active consent for the purpose as revoked.
func (s *Service) Revoke(ctx context.Context, tenantID, subjectID, purpose string) error {
	if err := s.store.RevokeConsent(ctx, tenantID, subjectID, purpose, time.Now().UTC()); err != nil {
		return err
	}

	s.logger.Info("Revoked consent", "subject_id", subjectID, "purpose", purpose)

	return nil
}
