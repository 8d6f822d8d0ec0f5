package trigger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTriggerInactive rejects dispatch on a deactivated trigger.
	ErrTriggerInactive = errors.New("trigger is not active")

	// ErrTriggerWrongType rejects webhook invocation of a non-webhook trigger.
	ErrTriggerWrongType = errors.New("trigger is not a webhook trigger")

	// ErrBadSignature rejects a webhook body whose signature does not match
	// the configured secret.
	ErrBadSignature = errors.New("webhook signature verification failed")
)

// MissingFieldsError lists required payload fields absent from a webhook
// invocation.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
