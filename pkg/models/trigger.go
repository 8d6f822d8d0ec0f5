package models

import "time"

// TriggerType determines which part of Config is meaningful: webhook
// triggers use secret/requiredFields/inputMapping, schedule triggers use a
// cron expression plus optional static input, event triggers use
// eventType/sourceFilter/inputMapping.
type TriggerType string

const (
	TriggerTypeWebhook  TriggerType = "webhook"
	TriggerTypeSchedule TriggerType = "schedule"
	TriggerTypeEvent    TriggerType = "event"
)

// Trigger binds an external or scheduled stimulus to a workflow execution.
type Trigger struct {
	ID              string         `json:"id"`
	WorkflowID      string         `json:"workflow_id" validate:"required"`
	TenantID        string         `json:"tenant_id"   validate:"required"`
	Type            TriggerType    `json:"type"        validate:"required,oneof=webhook schedule event"`
	Config          map[string]any `json:"config"`
	IsActive        bool           `json:"is_active"`
	LastTriggeredAt *time.Time     `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Webhook trigger config keys.
const (
	TriggerConfigSecret         = "secret"
	TriggerConfigRequiredFields = "requiredFields"
	TriggerConfigInputMapping   = "inputMapping"
)

// Schedule trigger config keys.
const (
	TriggerConfigCron  = "cron"
	TriggerConfigInput = "input"
)

// Event trigger config keys.
const (
	TriggerConfigEventType    = "eventType"
	TriggerConfigSourceFilter = "sourceFilter"
)

// Known business event types. The catalog is enumerable but not closed:
// new types can be emitted without pre-registration, only trigger
// subscriptions are bound to configured types.
const (
	EventPaymentCompleted  = "payment.completed"
	EventPaymentFailed     = "payment.failed"
	EventDeliveryConfirmed = "delivery.confirmed"
	EventCredentialIssued  = "credential.issued"
	EventDisputeFiled      = "dispute.filed"
	EventConsentRevoked    = "consent.revoked"
)
