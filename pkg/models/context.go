package models

// ActionContext is the shared mutable state threaded through one workflow
// run. It is created fresh per execution and owned exclusively by that run;
// handlers read earlier keys and write new keys under their own namespace
// (state.finance, state.offer, state.trustScore). Namespacing is by
// convention only: a later step can overwrite an earlier step's key.
type ActionContext struct {
	Input      map[string]any `json:"input"`
	WorkflowID string         `json:"workflow_id"`
	TenantID   string         `json:"tenant_id"`
	State      map[string]any `json:"state"`
}

func NewActionContext(workflowID, tenantID string, input map[string]any) *ActionContext {
	if input == nil {
		input = make(map[string]any)
	}

	return &ActionContext{
		Input:      input,
		WorkflowID: workflowID,
		TenantID:   tenantID,
		State:      make(map[string]any),
	}
}
