package models

import "time"

// TrustEvent is one append-only entry in a subject's reputation history.
// Events are immutable once written.
type TrustEvent struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"  validate:"required"`
	SubjectID string         `json:"subject_id" validate:"required"`
	EventType string         `json:"event_type" validate:"required"`
	Weight    float64        `json:"weight"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TrustLevel buckets an event-sum score into a named tier.
type TrustLevel string

const (
	TrustLevelNew      TrustLevel = "new"
	TrustLevelBronze   TrustLevel = "bronze"
	TrustLevelSilver   TrustLevel = "silver"
	TrustLevelGold     TrustLevel = "gold"
	TrustLevelPlatinum TrustLevel = "platinum"
)

// TrustScore is a derived, cacheable snapshot of a subject's reputation.
// It is never a source of truth: any score is reconstructible from the
// subject's TrustEvent log. Drivers is populated by the driver-weighted
// model, Level by the event-sum model.
type TrustScore struct {
	TenantID     string             `json:"tenant_id"`
	SubjectID    string             `json:"subject_id"`
	Score        float64            `json:"score"`
	Level        TrustLevel         `json:"level,omitempty"`
	Drivers      map[string]float64 `json:"drivers,omitempty"`
	LastComputed time.Time          `json:"last_computed"`
}
