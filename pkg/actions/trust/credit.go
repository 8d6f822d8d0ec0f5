package trust

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/credentis/credentis/pkg/models"
)

const ActionCalculateCreditScore = "trust.calculate_credit_score"

// Component caps: volume contributes at most 40 points, frequency 30,
// consistency 30; the sum is clamped to 100.
const (
	volumeCap      = 40.0
	frequencyCap   = 30.0
	consistencyCap = 30.0

	volumeDivisor     = 250.0
	frequencyPerEvent = 3.0
)

// CalculateCreditScoreAction derives a deterministic credit score from
// verified receipts accumulated earlier in the run
// (state.verifiedReceipts). Pure in-memory arithmetic, no I/O.
type CalculateCreditScoreAction struct{}

func NewCalculateCreditScoreAction() *CalculateCreditScoreAction {
	return &CalculateCreditScoreAction{}
}

func (a *CalculateCreditScoreAction) Name() string {
	return ActionCalculateCreditScore
}

func (a *CalculateCreditScoreAction) Execute(_ context.Context, ec *models.ActionContext, _ map[string]any, logger *slog.Logger) error {
	logger = logger.With("module", "credit_score_action")

	amounts, err := receiptAmounts(ec.State["verifiedReceipts"])
	if err != nil {
		return err
	}

	volume, frequency, consistency := creditComponents(amounts)
	score := math.Min(100, volume+frequency+consistency)

	ec.State["creditScore"] = map[string]any{
		"score":            score,
		"volumeScore":      volume,
		"frequencyScore":   frequency,
		"consistencyScore": consistency,
		"receiptCount":     len(amounts),
	}

	logger.Info("Calculated credit score", "score", score, "receipts", len(amounts))

	return nil
}

func creditComponents(amounts []float64) (volume, frequency, consistency float64) {
	if len(amounts) == 0 {
		return 0, 0, 0
	}

	var total float64
	for _, amount := range amounts {
		total += amount
	}

	volume = math.Min(volumeCap, total/volumeDivisor)
	frequency = math.Min(frequencyCap, float64(len(amounts))*frequencyPerEvent)

	// Consistency rewards low relative deviation between receipt amounts.
	// A single receipt has nothing to deviate from and scores full marks.
	mean := total / float64(len(amounts))
	if len(amounts) == 1 || mean == 0 {
		return volume, frequency, consistencyCap
	}

	var variance float64
	for _, amount := range amounts {
		variance += (amount - mean) * (amount - mean)
	}
	variance /= float64(len(amounts))

	coefficient := math.Sqrt(variance) / mean
	consistency = consistencyCap - math.Min(consistencyCap, coefficient*consistencyCap)

	return volume, frequency, consistency
}

func receiptAmounts(raw any) ([]float64, error) {
	if raw == nil {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("state.verifiedReceipts must be an array, got %T", raw)
	}

	amounts := make([]float64, 0, len(list))

	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("state.verifiedReceipts[%d] must be an object, got %T", i, entry)
		}

		amount, ok := m["amount"].(float64)
		if !ok {
			return nil, fmt.Errorf("state.verifiedReceipts[%d].amount must be a number", i)
		}

		amounts = append(amounts, amount)
	}

	return amounts, nil
}
