package trust

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
)

// Driver weights. They sum to 1.0.
const (
	weightKYC      = 0.30
	weightPayments = 0.25
	weightDisputes = 0.20
	weightDelivery = 0.10
	weightReviews  = 0.10
	weightTenure   = 0.05
)

// Event types read by the driver-weighted model.
const (
	eventKYCAttestation = "kyc_attestation"
	eventPayment        = "payment"
	eventDispute        = "dispute"
	eventRefund         = "refund"
	eventDelivery       = "delivery"
	eventReview         = "review"
)

// defaultAvgRating is the benefit-of-doubt rating for subjects with no
// reviews yet: it maps to a driver value of 60, not 0.
const defaultAvgRating = 3.0

// Engine is the driver-weighted scorer behind the Trust API. Scores are
// cached with a lastComputed timestamp; GetScore recomputes when the cached
// snapshot is older than maxAge and serves the cached row as-is otherwise.
type Engine struct {
	store  persistence.TrustEventRepository
	cache  ScoreCache
	logger *slog.Logger
}

func NewEngine(store persistence.TrustEventRepository, cache ScoreCache, logger *slog.Logger) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}

	return &Engine{
		store:  store,
		cache:  cache,
		logger: logger.With("module", "trust_engine"),
	}
}

func (e *Engine) Name() string {
	return "driver_weighted"
}

// GetScore returns the cached score when it is younger than maxAge,
// otherwise recomputes, persists and caches a fresh snapshot. There is no
// stale-while-revalidate: it is strictly recompute-or-serve-cached. On a
// cache miss the persisted snapshot is tried first, so a fresh score
// survives a process restart with the in-memory cache.
func (e *Engine) GetScore(ctx context.Context, tenantID, subjectID string, maxAge time.Duration) (*models.TrustScore, error) {
	cached, err := e.cache.Get(ctx, cacheKey(tenantID, subjectID))
	if err == nil && cached != nil && time.Since(cached.LastComputed) <= maxAge {
		return cached, nil
	}

	if stored, err := e.store.CachedScore(ctx, tenantID, subjectID); err == nil && time.Since(stored.LastComputed) <= maxAge {
		if err := e.cache.Set(ctx, cacheKey(tenantID, subjectID), stored, maxAge); err != nil {
			e.logger.Error("Failed to cache trust score", "subject_id", subjectID, "error", err)
		}

		return stored, nil
	}

	score, err := e.Compute(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}

	if err := e.store.SaveScore(ctx, score); err != nil {
		e.logger.Error("Failed to persist trust score", "subject_id", subjectID, "error", err)
	}

	if err := e.cache.Set(ctx, cacheKey(tenantID, subjectID), score, maxAge); err != nil {
		e.logger.Error("Failed to cache trust score", "subject_id", subjectID, "error", err)
	}

	return score, nil
}

// Compute derives the six drivers from the event log and combines them into
// a weighted score, rounded to one decimal place.
func (e *Engine) Compute(ctx context.Context, tenantID, subjectID string) (*models.TrustScore, error) {
	events, err := e.store.TrustEventsBySubject(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}

	drivers := computeDrivers(events, time.Now().UTC())

	score := drivers["kyc"]*weightKYC +
		drivers["payment_history"]*weightPayments +
		drivers["dispute_rate"]*weightDisputes +
		drivers["delivery"]*weightDelivery +
		drivers["reviews"]*weightReviews +
		drivers["tenure"]*weightTenure

	return &models.TrustScore{
		TenantID:     tenantID,
		SubjectID:    subjectID,
		Score:        math.Round(score*10) / 10,
		Drivers:      drivers,
		LastComputed: time.Now().UTC(),
	}, nil
}

// computeDrivers normalizes each driver independently to 0-100.
func computeDrivers(events []*models.TrustEvent, now time.Time) map[string]float64 {
	var (
		kycSeen    bool
		payments   int
		disputes   int
		refunds    int
		deliveries int
		ratingSum  float64
		reviews    int
		oldest     time.Time
	)

	for _, event := range events {
		switch event.EventType {
		case eventKYCAttestation:
			kycSeen = true
		case eventPayment:
			payments++
		case eventDispute:
			disputes++
		case eventRefund:
			refunds++
		case eventDelivery:
			deliveries++
		case eventReview:
			if rating, ok := event.Metadata["rating"].(float64); ok {
				ratingSum += rating
				reviews++
			}
		}

		if oldest.IsZero() || event.CreatedAt.Before(oldest) {
			oldest = event.CreatedAt
		}
	}

	avgRating := defaultAvgRating
	if reviews > 0 {
		avgRating = ratingSum / float64(reviews)
	}

	disputeRatio := float64(disputes+refunds) / math.Max(1, float64(payments))

	var tenureDays float64
	if !oldest.IsZero() {
		tenureDays = now.Sub(oldest).Hours() / 24
	}

	drivers := map[string]float64{
		"kyc":             0,
		"payment_history": math.Min(100, float64(payments)*5),
		"dispute_rate":    math.Max(0, 100-disputeRatio*500),
		"delivery":        math.Min(100, float64(deliveries)*10),
		"reviews":         (avgRating / 5) * 100,
		"tenure":          math.Min(100, tenureDays*0.5),
	}
	if kycSeen {
		drivers["kyc"] = 100
	}

	return drivers
}

func cacheKey(tenantID, subjectID string) string {
	return tenantID + ":" + subjectID
}
