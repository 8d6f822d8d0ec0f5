// Package external provides outbound HTTP actions: generic fetches and the
// EcoCash payment gateway call. Failures are fail-fast with the endpoint in
// the message; there is no retry or backoff, the workflow run fails.
package external

import (
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

const ActionFetch = "external.fetch"

const defaultTimeout = 30 * time.Second

// FetchAction performs a configured HTTP request and writes the decoded
// response to state under config.resultKey (default "external").
type FetchAction struct {
	client *http.Client
}

func NewFetchAction(client *http.Client) *FetchAction {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &FetchAction{client: client}
}

func (a *FetchAction) Name() string {
	return ActionFetch
}

func (a *FetchAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "external_fetch_action")

	url, _ := config["url"].(string)
	if url == "" {
		return fmt.Errorf("external fetch requires config.url")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	resultKey, _ := config["resultKey"].(string)
	if resultKey == "" {
		resultKey = "external"
	}

	body, err := requestBody(config["body"])
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, value := range headers {
			if strVal, ok := value.(string); ok {
				req.Header.Set(key, strVal)
			}
		}
	}

	logger.Info("Fetching external resource", "method", method, "url", url)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("external fetch %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("external fetch %s returned status %d", url, resp.StatusCode)
	}

	ec.State[resultKey] = map[string]any{
		"status_code": resp.StatusCode,
		"body":        decodeBody(respBytes),
	}

	logger.Info("External fetch completed", "url", url, "status", resp.StatusCode)

	return nil
}

func requestBody(raw any) (io.Reader, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}

		return strings.NewReader(v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		return strings.NewReader(string(encoded)), nil
	}
}

// decodeBody returns parsed JSON when the response is JSON and the raw
// string otherwise.
func decodeBody(raw []byte) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		return decoded
	}

	return string(raw)
}
