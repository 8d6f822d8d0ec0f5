// Package consent provides workflow actions over the consent service.
package consent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credentis/credentis/pkg/consent"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/path"
)

const (
	ActionCapture = "consent.capture"
	ActionVerify  = "consent.verify"
	ActionRevoke  = "consent.revoke"
)

// CaptureAction records an active consent for the configured purpose and
// retention duration, writing the record summary to state.consent.
type CaptureAction struct {
	service *consent.Service
}

func NewCaptureAction(service *consent.Service) *CaptureAction {
	return &CaptureAction{service: service}
}

func (a *CaptureAction) Name() string {
	return ActionCapture
}

func (a *CaptureAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	subjectID, purpose, err := consentArgs(ec, config)
	if err != nil {
		return err
	}

	duration, _ := config["duration"].(string)
	if duration == "" {
		return fmt.Errorf("consent capture requires config.duration")
	}

	scope, _ := config["scope"].(string)

	record, err := a.service.Capture(ctx, ec.TenantID, subjectID, purpose, scope, duration)
	if err != nil {
		return err
	}

	ec.State["consent"] = map[string]any{
		"id":        record.ID,
		"purpose":   record.Purpose,
		"status":    string(record.Status),
		"expiresAt": record.ExpiresAt,
	}

	return nil
}

// VerifyAction fails the run unless an active, unexpired, purpose-matching
// consent exists for the subject.
type VerifyAction struct {
	service *consent.Service
}

func NewVerifyAction(service *consent.Service) *VerifyAction {
	return &VerifyAction{service: service}
}

func (a *VerifyAction) Name() string {
	return ActionVerify
}

func (a *VerifyAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, _ *slog.Logger) error {
	subjectID, purpose, err := consentArgs(ec, config)
	if err != nil {
		return err
	}

	record, err := a.service.Verify(ctx, ec.TenantID, subjectID, purpose)
	if err != nil {
		return err
	}

	ec.State["consent"] = map[string]any{
		"id":        record.ID,
		"purpose":   record.Purpose,
		"status":    string(record.Status),
		"expiresAt": record.ExpiresAt,
	}

	return nil
}

// RevokeAction revokes the subject's active consent for the purpose.
type RevokeAction struct {
	service *consent.Service
}

func NewRevokeAction(service *consent.Service) *RevokeAction {
	return &RevokeAction{service: service}
}

func (a *RevokeAction) Name() string {
	return ActionRevoke
}

func (a *RevokeAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, _ *slog.Logger) error {
	subjectID, purpose, err := consentArgs(ec, config)
	if err != nil {
		return err
	}

	return a.service.Revoke(ctx, ec.TenantID, subjectID, purpose)
}

func consentArgs(ec *models.ActionContext, config map[string]any) (subjectID, purpose string, err error) {
	purpose, _ = config["purpose"].(string)
	if purpose == "" {
		return "", "", fmt.Errorf("consent actions require config.purpose")
	}

	pathStr, _ := config["subjectPath"].(string)
	if pathStr == "" {
		pathStr = "input.subjectId"
	}

	p, err := path.Parse(pathStr)
	if err != nil {
		return "", "", fmt.Errorf("subjectPath: %w", err)
	}

	value, ok := p.Get(ec)
	if !ok {
		return "", "", fmt.Errorf("subject path %q did not resolve in workflow state", pathStr)
	}

	subjectID, ok = value.(string)
	if !ok || subjectID == "" {
		return "", "", fmt.Errorf("subject path %q must resolve to a non-empty string", pathStr)
	}

	return subjectID, purpose, nil
}
