package models

import "time"

// RunStatus is the persisted lifecycle state of a workflow run. The live
// interpreter only ever produces running, completed or failed; it has no
// pause or cancel states.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// WorkflowRun records one execution of a workflow. Runs are written by the
// executor for audit purposes and never read back during interpretation.
type WorkflowRun struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflow_id"`
	TenantID   string     `json:"tenant_id"`
	TriggerID  string     `json:"trigger_id,omitempty"`
	Status     RunStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// WorkflowRunStep records one attempted step within a run.
type WorkflowRunStep struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Index      int       `json:"index"`
	Action     string    `json:"action"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}
