package trust

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

// ErrNoTrustEvents means the subject has no event history: there is no
// score row to derive, which is distinct from a neutral score of 50.
var ErrNoTrustEvents = errors.New("subject has no trust events")

const (
	neutralBaseline = 50.0

	recentWindow = 7 * 24 * time.Hour
	staleWindow  = 90 * 24 * time.Hour
	recentBoost  = 1.05
	stalePenalty = 0.95
)

// Repository is the generic weighted-event-sum scorer used by workflow
// actions. It is deliberately a different model from the driver-weighted
// engine: 50 is the neutral baseline, weights add up, recency nudges the
// total by ±5%, and the result is bucketed into a level.
type Repository struct {
	store  persistence.TrustEventRepository
	logger *slog.Logger
}

func NewRepository(store persistence.TrustEventRepository, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger.With("module", "trust_repository"),
	}
}

func (r *Repository) Name() string {
	return "event_sum"
}

// RecordEvent appends an event, defaulting the weight from
// DefaultEventWeights when none is supplied. Unknown event types default to
// weight 0.
func (r *Repository) RecordEvent(ctx context.Context, tenantID, subjectID, eventType string, weight *float64, metadata map[string]any) (*models.TrustEvent, error) {
	w := 0.0
	if weight != nil {
		w = *weight
	} else if defaultWeight, ok := DefaultEventWeights[eventType]; ok {
		w = defaultWeight
	}

	event := &models.TrustEvent{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		SubjectID: subjectID,
		EventType: eventType,
		Weight:    w,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.AppendTrustEvent(ctx, event); err != nil {
		return nil, err
	}

	r.logger.Info("Recorded trust event",
		"subject_id", subjectID, "event_type", eventType, "weight", w)

	return event, nil
}

// Compute sums all weights for the subject, maps the total onto the 50
// baseline, applies the recency adjustment and buckets the result.
func (r *Repository) Compute(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error) {
	events, err := r.store.TrustEventsBySubject(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, ErrNoTrustEvents
	}

	var total float64
	var lastEvent time.Time

	for _, event := range events {
		total += event.Weight

		if event.CreatedAt.After(lastEvent) {
			lastEvent = event.CreatedAt
		}
	}

	score := adjustForRecency(baseScore(total), lastEvent, time.Now().UTC())

	return &models.TrustScore{
		TenantID:     tenantID,
		SubjectID:    subjectID,
		Score:        score,
		Level:        levelFor(score),
		LastComputed: time.Now().UTC(),
	}, nil
}

// baseScore maps a weight total onto the neutral 50 baseline, clamped to
// [0,100].
func baseScore(totalWeight float64) float64 {
	return clamp(neutralBaseline+totalWeight, 0, 100)
}

func adjustForRecency(score float64, lastEvent, now time.Time) float64 {
	age := now.Sub(lastEvent)

	switch {
	case age < recentWindow:
		score *= recentBoost
	case age > staleWindow:
		score *= stalePenalty
	}

	return clamp(score, 0, 100)
}

func levelFor(score float64) models.TrustLevel {
	switch {
	case score >= 90:
		return models.TrustLevelPlatinum
	case score >= 75:
		return models.TrustLevelGold
	case score >= 60:
		return models.TrustLevelSilver
	case score >= 40:
		return models.TrustLevelBronze
	default:
		return models.TrustLevelNew
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
