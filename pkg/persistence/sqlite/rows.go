package sqlite

import (
	"encoding/json"
	"time"
)

// JSON column helpers. Empty maps round-trip as empty strings.

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func unmarshalMap(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}

	return out, nil
}

type workflowRow struct {
	ID          string `gorm:"primaryKey"`
	TenantID    string `gorm:"index:idx_workflows_tenant"`
	Name        string
	Category    string
	Provider    string
	Description string
	InputSchema string
	Actions     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (workflowRow) TableName() string { return "workflows" }

type workflowRunRow struct {
	ID         string `gorm:"primaryKey"`
	WorkflowID string `gorm:"index:idx_runs_workflow"`
	TenantID   string
	TriggerID  string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

func (workflowRunRow) TableName() string { return "workflow_runs" }

type workflowRunStepRow struct {
	ID         string `gorm:"primaryKey"`
	RunID      string `gorm:"index:idx_run_steps_run"`
	StepIndex  int
	Action     string
	Status     string
	Error      string
	DurationMS int64
}

func (workflowRunStepRow) TableName() string { return "workflow_run_steps" }

type triggerRow struct {
	ID              string `gorm:"primaryKey"`
	WorkflowID      string `gorm:"index:idx_triggers_workflow"`
	TenantID        string `gorm:"index:idx_triggers_tenant"`
	Type            string
	Config          string
	IsActive        bool `gorm:"index:idx_triggers_active"`
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (triggerRow) TableName() string { return "workflow_triggers" }

type trustEventRow struct {
	ID        string `gorm:"primaryKey"`
	TenantID  string `gorm:"index:idx_trust_events_subject"`
	SubjectID string `gorm:"index:idx_trust_events_subject"`
	EventType string
	Weight    float64
	Metadata  string
	CreatedAt time.Time
}

func (trustEventRow) TableName() string { return "trust_events" }

type trustScoreRow struct {
	TenantID     string `gorm:"primaryKey"`
	SubjectID    string `gorm:"primaryKey"`
	Score        float64
	Level        string
	Drivers      string
	LastComputed time.Time
}

func (trustScoreRow) TableName() string { return "trust_scores" }

type consentRow struct {
	ID         string `gorm:"primaryKey"`
	TenantID   string `gorm:"index:idx_consents_subject"`
	SubjectID  string `gorm:"index:idx_consents_subject"`
	Purpose    string
	Scope      string
	Duration   string
	Status     string
	CapturedAt time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

func (consentRow) TableName() string { return "consents" }

type providerRow struct {
	ID        string `gorm:"primaryKey"`
	TenantID  string `gorm:"index:idx_providers_tenant"`
	Name      string
	Kind      string
	Config    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (providerRow) TableName() string { return "providers" }
