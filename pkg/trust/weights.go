package trust

// DefaultEventWeights is the fixed lookup table used by the event-sum model
// when an event is recorded without an explicit weight. Values range from
// -50 (confirmed fraud) to +10 (verification passed).
var DefaultEventWeights = map[string]float64{
	"fraud_detected":      -50,
	"chargeback":          -20,
	"dispute_filed":       -15,
	"payment_failed":      -10,
	"delivery_late":       -5,
	"consent_revoked":     -2,
	"review_negative":     -3,
	"review_positive":     3,
	"payment_completed":   5,
	"delivery_confirmed":  5,
	"credential_issued":   5,
	"dispute_resolved":    5,
	"verification_passed": 10,
}
