// Package credential wraps the external SSI/OpenID4VC agent that performs
// the actual credential issuance. The core treats it as an opaque async
// collaborator that may fail.
package credential

import (
	"context"

	"github.com/credentis/credentis/pkg/models"
)

// OfferRequest describes one credential offer to create.
type OfferRequest struct {
	CredentialType string         `json:"credentialType"`
	Claims         map[string]any `json:"claims"`
	TenantID       string         `json:"tenantId"`
	SubjectDID     string         `json:"subjectDid,omitempty"`
}

type Issuer interface {
	CreateOffer(ctx context.Context, req OfferRequest) (*models.CredentialOffer, error)
}
