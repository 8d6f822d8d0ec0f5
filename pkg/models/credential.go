package models

import "time"

// CredentialOffer is the opaque descriptor returned by the external
// issuance agent for a claimable verifiable credential.
type CredentialOffer struct {
	OfferID                 string    `json:"offerId"`
	CredentialOfferURI      string    `json:"credential_offer_uri"`
	CredentialOfferDeeplink string    `json:"credential_offer_deeplink"`
	ExpiresAt               time.Time `json:"expiresAt"`
	CredentialType          string    `json:"credentialType"`
}

// Provider describes a tenant-scoped integration endpoint (credential
// issuer profile, payment gateway, notification channel).
type Provider struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id" validate:"required"`
	Name      string         `json:"name"      validate:"required"`
	Kind      string         `json:"kind"      validate:"required"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
