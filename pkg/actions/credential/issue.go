// Package credential provides the credential issuance action that bridges
// workflow state to the external identity agent.
package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credentis/credentis/pkg/credential"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/path"
)

const ActionIssueOffer = "credential.issue_offer"

// IssueOfferAction builds a claims object from configured state paths and
// delegates offer creation to the issuance agent. The returned offer
// descriptor lands in state.offer.
type IssueOfferAction struct {
	issuer credential.Issuer
}

func NewIssueOfferAction(issuer credential.Issuer) *IssueOfferAction {
	return &IssueOfferAction{issuer: issuer}
}

func (a *IssueOfferAction) Name() string {
	return ActionIssueOffer
}

func (a *IssueOfferAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "credential_action")

	credentialType, _ := config["type"].(string)
	if credentialType == "" {
		return fmt.Errorf("credential issuance requires config.type")
	}

	claims, err := a.buildClaims(ec, config)
	if err != nil {
		return err
	}

	subjectDID, _ := config["subjectDid"].(string)

	offer, err := a.issuer.CreateOffer(ctx, credential.OfferRequest{
		CredentialType: credentialType,
		Claims:         claims,
		TenantID:       ec.TenantID,
		SubjectDID:     subjectDID,
	})
	if err != nil {
		return err
	}

	ec.State["offer"] = map[string]any{
		"offerId":                   offer.OfferID,
		"credential_offer_uri":      offer.CredentialOfferURI,
		"credential_offer_deeplink": offer.CredentialOfferDeeplink,
		"expiresAt":                 offer.ExpiresAt,
		"credentialType":            offer.CredentialType,
	}

	logger.Info("Issued credential offer",
		"credential_type", credentialType, "offer_id", offer.OfferID)

	return nil
}

// buildClaims walks config.mapping (claim name -> dotted context path) and
// optionally prepends the whole run input when config.copyInput is set.
// Mapped claims win over copied input on key collisions.
func (a *IssueOfferAction) buildClaims(ec *models.ActionContext, config map[string]any) (map[string]any, error) {
	claims := make(map[string]any)

	if copyInput, _ := config["copyInput"].(bool); copyInput {
		for k, v := range ec.Input {
			claims[k] = v
		}
	}

	rawMapping, _ := config["mapping"].(map[string]any)
	for claim, rawPath := range rawMapping {
		pathStr, ok := rawPath.(string)
		if !ok {
			return nil, fmt.Errorf("claim mapping for %q must be a string path, got %T", claim, rawPath)
		}

		p, err := path.Parse(pathStr)
		if err != nil {
			return nil, fmt.Errorf("claim mapping for %q: %w", claim, err)
		}

		value, ok := p.Get(ec)
		if !ok {
			return nil, fmt.Errorf("claim %q: path %q did not resolve in workflow state", claim, pathStr)
		}

		claims[claim] = value
	}

	return claims, nil
}
