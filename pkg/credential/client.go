package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/credentis/credentis/pkg/models"
)

const defaultAgentTimeout = 30 * time.Second

// AgentClient talks to the identity agent's offer endpoint over HTTP.
type AgentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAgentClient(baseURL, apiKey string, logger *slog.Logger) *AgentClient {
	return &AgentClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultAgentTimeout},
		logger:     logger.With("module", "credential_agent_client"),
	}
}

func (c *AgentClient) CreateOffer(ctx context.Context, offerReq OfferRequest) (*models.CredentialOffer, error) {
	endpoint := c.baseURL + "/v1/credentials/offers"

	payload, err := json.Marshal(offerReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode offer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create offer request for %s: %w", endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Info("Requesting credential offer",
		"credential_type", offerReq.CredentialType, "tenant_id", offerReq.TenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential agent call to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("credential agent %s returned status %d: %s", endpoint, resp.StatusCode, truncate(body, 256))
	}

	var offer models.CredentialOffer
	if err := json.Unmarshal(body, &offer); err != nil {
		return nil, fmt.Errorf("failed to decode offer from %s: %w", endpoint, err)
	}

	return &offer, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}

	return string(b[:n]) + "..."
}
