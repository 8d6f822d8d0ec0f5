// Package trust provides workflow actions over the event-sum trust model.
package trust

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/path"
	"github.com/credentis/credentis/pkg/trust"
)

const (
	ActionUpdateScore = "trust.update_score"
	ActionGetScore    = "trust.get_score"
)

// UpdateScoreAction records a trust event for the configured subject and
// writes the recomputed score to state.trustScore.
type UpdateScoreAction struct {
	repo *trust.Repository
}

func NewUpdateScoreAction(repo *trust.Repository) *UpdateScoreAction {
	return &UpdateScoreAction{repo: repo}
}

func (a *UpdateScoreAction) Name() string {
	return ActionUpdateScore
}

func (a *UpdateScoreAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "trust_action")

	subjectID, err := resolveSubject(ec, config)
	if err != nil {
		return err
	}

	eventType, _ := config["eventType"].(string)
	if eventType == "" {
		return fmt.Errorf("trust score update requires config.eventType")
	}

	var weight *float64
	if raw, ok := config["weight"].(float64); ok {
		weight = &raw
	}

	metadata, _ := config["metadata"].(map[string]any)

	if _, err := a.repo.RecordEvent(ctx, ec.TenantID, subjectID, eventType, weight, metadata); err != nil {
		return err
	}

	score, err := a.repo.Compute(ctx, ec.TenantID, subjectID)
	if err != nil {
		return err
	}

	ec.State["trustScore"] = scoreState(score)

	logger.Info("Updated trust score", "subject_id", subjectID, "score", score.Score, "level", score.Level)

	return nil
}

// GetScoreAction reads the current event-sum score into state.trustScore.
type GetScoreAction struct {
	repo *trust.Repository
}

func NewGetScoreAction(repo *trust.Repository) *GetScoreAction {
	return &GetScoreAction{repo: repo}
}

func (a *GetScoreAction) Name() string {
	return ActionGetScore
}

func (a *GetScoreAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	subjectID, err := resolveSubject(ec, config)
	if err != nil {
		return err
	}

	score, err := a.repo.Compute(ctx, ec.TenantID, subjectID)
	if err != nil {
		return err
	}

	ec.State["trustScore"] = scoreState(score)

	return nil
}

// resolveSubject follows config.subjectPath when configured and falls back
// to input.subjectId.
func resolveSubject(ec *models.ActionContext, config map[string]any) (string, error) {
	pathStr, _ := config["subjectPath"].(string)
	if pathStr == "" {
		pathStr = "input.subjectId"
	}

	p, err := path.Parse(pathStr)
	if err != nil {
		return "", fmt.Errorf("subjectPath: %w", err)
	}

	value, ok := p.Get(ec)
	if !ok {
		return "", fmt.Errorf("subject path %q did not resolve in workflow state", pathStr)
	}

	subjectID, ok := value.(string)
	if !ok || subjectID == "" {
		return "", fmt.Errorf("subject path %q must resolve to a non-empty string, got %T", pathStr, value)
	}

	return subjectID, nil
}

func scoreState(score *models.TrustScore) map[string]any {
	return map[string]any{
		"score": score.Score,
		"level": string(score.Level),
	}
}
