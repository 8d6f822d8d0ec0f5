package models

import "time"

type ConsentStatus string

const (
	ConsentStatusActive  ConsentStatus = "active"
	ConsentStatusRevoked ConsentStatus = "revoked"
)

// ConsentRecord captures a subject's consent for a purpose, with a bounded
// retention window parsed from a duration such as "90d", "6m" or "1y".
type ConsentRecord struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenant_id"  validate:"required"`
	SubjectID  string        `json:"subject_id" validate:"required"`
	Purpose    string        `json:"purpose"    validate:"required"`
	Scope      string        `json:"scope"`
	Duration   string        `json:"duration"   validate:"required"`
	Status     ConsentStatus `json:"status"`
	CapturedAt time.Time     `json:"captured_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
	RevokedAt  *time.Time    `json:"revoked_at,omitempty"`
}

// Expired reports whether the retention window has passed at the given time.
func (c *ConsentRecord) Expired(at time.Time) bool {
	return at.After(c.ExpiresAt)
}
