package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/path"
)

const ActionEcoCashPayment = "external.ecocash_payment"

// EcoCashPaymentAction initiates a mobile-money payment against the EcoCash
// gateway. Amount and msisdn can be literal config values or dotted paths
// into the run context (amountPath/msisdnPath). The gateway response lands
// in state.payment. Note the partial-failure hazard: a placed payment is
// not rolled back when a later step fails.
type EcoCashPaymentAction struct {
	client *http.Client
}

func NewEcoCashPaymentAction(client *http.Client) *EcoCashPaymentAction {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &EcoCashPaymentAction{client: client}
}

func (a *EcoCashPaymentAction) Name() string {
	return ActionEcoCashPayment
}

func (a *EcoCashPaymentAction) Execute(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "ecocash_action")

	gatewayURL, _ := config["url"].(string)
	if gatewayURL == "" {
		return fmt.Errorf("ecocash payment requires config.url")
	}

	amount, err := resolveValue(ec, config, "amount")
	if err != nil {
		return err
	}

	msisdn, err := resolveValue(ec, config, "msisdn")
	if err != nil {
		return err
	}

	currency, _ := config["currency"].(string)
	if currency == "" {
		currency = "USD"
	}

	reference := uuid.New().String()

	payload, err := json.Marshal(map[string]any{
		"amount":    amount,
		"msisdn":    msisdn,
		"currency":  currency,
		"reference": reference,
		"tenantId":  ec.TenantID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create payment request for %s: %w", gatewayURL, err)
	}

	req.Header.Set("Content-Type", "application/json")

	logger.Info("Initiating EcoCash payment", "reference", reference, "currency", currency)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("ecocash payment call to %s failed: %w", gatewayURL, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read payment response from %s: %w", gatewayURL, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ecocash gateway %s returned status %d", gatewayURL, resp.StatusCode)
	}

	ec.State["payment"] = map[string]any{
		"reference": reference,
		"amount":    amount,
		"currency":  currency,
		"response":  decodeBody(respBytes),
	}

	logger.Info("EcoCash payment initiated", "reference", reference, "status", resp.StatusCode)

	return nil
}

// resolveValue reads config key "<name>" directly, or follows the dotted
// path in "<name>Path" when present.
func resolveValue(ec *models.ActionContext, config map[string]any, name string) (any, error) {
	if pathStr, ok := config[name+"Path"].(string); ok && pathStr != "" {
		p, err := path.Parse(pathStr)
		if err != nil {
			return nil, fmt.Errorf("%sPath: %w", name, err)
		}

		value, ok := p.Get(ec)
		if !ok {
			return nil, fmt.Errorf("%sPath %q did not resolve in workflow state", name, pathStr)
		}

		return value, nil
	}

	value, ok := config[name]
	if !ok {
		return nil, fmt.Errorf("ecocash payment requires config.%s or config.%sPath", name, name)
	}

	return value, nil
}
