// Package finance provides invoice arithmetic actions.
package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/credentis/credentis/pkg/models"
)

const ActionCalculateInvoice = "finance.calculate_invoice"

// CalculateInvoiceAction computes subtotal, discount, tax and grand total
// from the run input and writes state.finance. No rounding is applied; the
// raw arithmetic is preserved for downstream credential claims.
type CalculateInvoiceAction struct{}

func NewCalculateInvoiceAction() *CalculateInvoiceAction {
	return &CalculateInvoiceAction{}
}

func (a *CalculateInvoiceAction) Name() string {
	return ActionCalculateInvoice
}

func (a *CalculateInvoiceAction) Execute(_ context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "finance_action")

	items, err := parseLineItems(ec.Input["items"])
	if err != nil {
		return err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * item.Qty
	}

	discountAmount, err := resolveDiscount(configOrInput(config, ec.Input, "discount"), subtotal)
	if err != nil {
		return err
	}

	taxRate := toFloat(configOrInput(config, ec.Input, "taxRate"))
	taxInclusive, _ := configOrInput(config, ec.Input, "taxInclusive").(bool)

	currency, _ := configOrInput(config, ec.Input, "currency").(string)
	if currency == "" {
		currency = "USD"
	}

	taxableAmount := subtotal - discountAmount

	var taxAmount, grandTotal float64
	if taxInclusive {
		taxAmount = taxableAmount - taxableAmount/(1+taxRate/100)
		grandTotal = taxableAmount
	} else {
		taxAmount = taxableAmount * taxRate / 100
		grandTotal = taxableAmount + taxAmount
	}

	ec.State["finance"] = map[string]any{
		"lineItems":      lineItemMaps(items),
		"subtotal":       subtotal,
		"discountAmount": discountAmount,
		"taxAmount":      taxAmount,
		"grandTotal":     grandTotal,
		"currency":       currency,
	}

	logger.Info("Calculated invoice",
		"subtotal", subtotal, "discount", discountAmount, "tax", taxAmount, "grand_total", grandTotal)

	return nil
}

type lineItem struct {
	Description string
	UnitPrice   float64
	Qty         float64
}

func parseLineItems(raw any) ([]lineItem, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("invoice calculation requires input.items as a non-empty array, got %T", raw)
	}

	items := make([]lineItem, 0, len(list))

	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("input.items[%d] must be an object, got %T", i, entry)
		}

		item := lineItem{
			UnitPrice: toFloat(m["unitPrice"]),
			Qty:       toFloat(m["qty"]),
		}
		item.Description, _ = m["description"].(string)

		items = append(items, item)
	}

	return items, nil
}

// resolveDiscount accepts a fixed number or a percentage-of-subtotal string
// such as "10%".
func resolveDiscount(raw any, subtotal float64) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}

		if strings.HasSuffix(trimmed, "%") {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "%"), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid percentage discount %q: %w", v, err)
			}

			return subtotal * pct / 100, nil
		}

		fixed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid discount %q: %w", v, err)
		}

		return fixed, nil
	default:
		return toFloat(raw), nil
	}
}

func lineItemMaps(items []lineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"description": item.Description,
			"unitPrice":   item.UnitPrice,
			"qty":         item.Qty,
			"total":       item.UnitPrice * item.Qty,
		})
	}

	return out
}

// configOrInput lets the step config override run input for scalar knobs.
func configOrInput(config, input map[string]any, key string) any {
	if config != nil {
		if v, ok := config[key]; ok {
			return v
		}
	}

	return input[key]
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()

		return f
	default:
		return 0
	}
}
