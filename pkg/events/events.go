// Package events defines event types for workflow run lifecycle notifications.
package events

import (
	"time"
)

type EventType string

const Topic = "credentis.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"
	TriggerFiredEvent EventType = "trigger.fired"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	TenantID   string         `json:"tenant_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type RunStarted struct {
	BaseEvent

	RunID     string `json:"run_id"`
	TriggerID string `json:"trigger_id,omitempty"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunCompleted struct {
	BaseEvent

	RunID    string        `json:"run_id"`
	Duration time.Duration `json:"duration"`
}

func (e RunCompleted) GetType() EventType {
	return RunCompletedEvent
}

// RunFailed is published for every failed run. For asynchronously triggered
// runs (schedule/event) it is the only failure signal besides logs, so an
// alerting integration subscribes here without changing default behavior.
type RunFailed struct {
	BaseEvent

	RunID    string        `json:"run_id"`
	Error    string        `json:"error"`
	Async    bool          `json:"async"`
	Duration time.Duration `json:"duration"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}

// TriggerFired is published when a trigger dispatches a workflow, before the
// run completes.
type TriggerFired struct {
	BaseEvent

	TriggerID   string `json:"trigger_id"`
	TriggerType string `json:"trigger_type"`
	EventName   string `json:"event_name,omitempty"`
	Source      string `json:"source,omitempty"`
}

func (e TriggerFired) GetType() EventType {
	return TriggerFiredEvent
}
