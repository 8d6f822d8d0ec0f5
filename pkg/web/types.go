// Package web provides HTTP request and response types for the Credentis API.
package web

import "github.com/credentis/credentis/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string              `json:"name"         validate:"required,min=3"`
	Category    string              `json:"category"`
	Provider    string              `json:"provider"`
	Description string              `json:"description"`
	InputSchema map[string]any      `json:"input_schema,omitempty"`
	Actions     []models.ActionStep `json:"actions"      validate:"required,min=1,dive"`
}

// UpdateWorkflowRequest carries a full replacement definition. Updates are
// whole-document overwrites, not merges.
type UpdateWorkflowRequest struct {
	Name        string              `json:"name"         validate:"required,min=3"`
	Category    string              `json:"category"`
	Provider    string              `json:"provider"`
	Description string              `json:"description"`
	InputSchema map[string]any      `json:"input_schema,omitempty"`
	Actions     []models.ActionStep `json:"actions"      validate:"required,min=1,dive"`
}

// ExecuteWorkflowRequest represents the request body for a direct execution.
type ExecuteWorkflowRequest struct {
	Input map[string]any `json:"input"`
}

// ExecuteWorkflowResponse returns the recorded run and its final state.
type ExecuteWorkflowResponse struct {
	RunID  string         `json:"run_id"`
	Status string         `json:"status"`
	State  map[string]any `json:"state"`
}

// CreateTriggerRequest represents the request body for registering a trigger.
type CreateTriggerRequest struct {
	WorkflowID string         `json:"workflow_id" validate:"required"`
	Type       string         `json:"type"        validate:"required,oneof=webhook schedule event"`
	Config     map[string]any `json:"config"`
	IsActive   *bool          `json:"is_active,omitempty"`
}

// RecordTrustEventRequest appends one event to a subject's trust history.
// Weight is optional; when omitted the default weight table applies.
type RecordTrustEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	Weight    *float64       `json:"weight,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ConsentRequest is shared by capture, verify and revoke. Duration is only
// required on capture.
type ConsentRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Purpose   string `json:"purpose"    validate:"required"`
	Scope     string `json:"scope"`
	Duration  string `json:"duration"`
}

// CreateProviderRequest registers a tenant integration endpoint (issuer
// profile, payment gateway, notification channel).
type CreateProviderRequest struct {
	Name   string         `json:"name" validate:"required"`
	Kind   string         `json:"kind" validate:"required"`
	Config map[string]any `json:"config"`
}

// EmitEventRequest publishes a business event to all matching event triggers.
type EmitEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	Data      map[string]any `json:"data"`
	Source    string         `json:"source"`
}
