// Package trust computes 0-100 reputation scores from append-only event
// logs. Two structurally different models coexist on purpose: the
// driver-weighted engine serves the Trust API, the event-sum repository
// serves workflow actions. They are kept as distinct named strategies
// pending a product decision on unification.
package trust

import (
	"context"

	"github.com/credentis/credentis/pkg/models"
)

// Strategy computes a fresh score snapshot from a subject's event log.
type Strategy interface {
	Name() string
	Compute(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error)
}

var (
	_ Strategy = (*Engine)(nil)
	_ Strategy = (*Repository)(nil)
)
