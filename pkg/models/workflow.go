// Package models defines the core domain models for credential-backed business workflows.
package models

import "time"

// WorkflowDefinition is an ordered, configuration-driven action pipeline.
// Definitions are immutable for the duration of a run; updates are full
// overwrites, never partial patches.
type WorkflowDefinition struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"   validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Category    string         `json:"category"`
	Provider    string         `json:"provider"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	Actions     []ActionStep   `json:"actions"     validate:"required,min=1,dive"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ActionStep names a registered action and carries its configuration.
// Step order in the definition is significant and fixed.
type ActionStep struct {
	Action string         `json:"action" validate:"required"`
	Config map[string]any `json:"config"`
}
