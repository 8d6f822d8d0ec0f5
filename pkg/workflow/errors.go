package workflow

import (
	"fmt"
	"strings"
)

// UnknownActionError is raised when a step references an action name that
// was never registered. It aborts the run immediately; state written by
// earlier steps is not rolled back.
type UnknownActionError struct {
	Action     string
	WorkflowID string
	StepIndex  int
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("action %q (step %d of workflow %s) is not registered", e.Action, e.StepIndex, e.WorkflowID)
}

// InputValidationError reports workflow input that failed the definition's
// input schema, before any step ran.
type InputValidationError struct {
	WorkflowID string
	Violations []string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("input for workflow %s is invalid: %s", e.WorkflowID, strings.Join(e.Violations, "; "))
}
