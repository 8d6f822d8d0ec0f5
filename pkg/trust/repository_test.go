package trust

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credentis/credentis/pkg/mocks"
	"github.com/credentis/credentis/pkg/models"
)

func weightedEvent(weight float64, createdAt time.Time) *models.TrustEvent {
	return &models.TrustEvent{
		TenantID:  "tenant-1",
		SubjectID: "subject-1",
		EventType: "payment_completed",
		Weight:    weight,
		CreatedAt: createdAt,
	}
}

func TestRecordEventDefaultsWeightFromTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		eventType  string
		weight     *float64
		wantWeight float64
	}{
		{name: "known type uses table", eventType: "payment_completed", wantWeight: 5},
		{name: "negative table entry", eventType: "fraud_detected", wantWeight: -50},
		{name: "unknown type defaults to zero", eventType: "some_custom_event", wantWeight: 0},
		{name: "explicit weight wins", eventType: "payment_completed", weight: ptr(12.5), wantWeight: 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &mocks.MockTrustEventRepository{}
			store.On("AppendTrustEvent", mock.Anything, mock.MatchedBy(func(event *models.TrustEvent) bool {
				return event.Weight == tt.wantWeight && event.EventType == tt.eventType
			})).Return(nil)

			repo := NewRepository(store, slog.Default())

			event, err := repo.RecordEvent(context.Background(), "tenant-1", "subject-1", tt.eventType, tt.weight, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWeight, event.Weight)
			assert.NotEmpty(t, event.ID)

			store.AssertExpectations(t)
		})
	}
}

func TestComputeNoEvents(t *testing.T) {
	t.Parallel()

	store := &mocks.MockTrustEventRepository{}
	store.On("TrustEventsBySubject", mock.Anything, "tenant-1", "subject-1").
		Return([]*models.TrustEvent{}, nil)

	repo := NewRepository(store, slog.Default())

	_, err := repo.Compute(context.Background(), "tenant-1", "subject-1")
	require.ErrorIs(t, err, ErrNoTrustEvents)
}

func TestBaseScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total float64
		want  float64
	}{
		{name: "zero total is the neutral baseline", total: 0, want: 50},
		{name: "positive total adds", total: 20, want: 70},
		{name: "negative total subtracts", total: -30, want: 20},
		{name: "clamped at 100", total: 80, want: 100},
		{name: "clamped at 0", total: -80, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, baseScore(tt.total), 0.0001)
		})
	}
}

func TestAdjustForRecency(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lastEvent time.Time
		want      float64
	}{
		{name: "recent activity boosts 5 percent", lastEvent: now.AddDate(0, 0, -3), want: 63},
		{name: "between windows unchanged", lastEvent: now.AddDate(0, 0, -30), want: 60},
		{name: "stale activity penalized 5 percent", lastEvent: now.AddDate(0, 0, -120), want: 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, adjustForRecency(60, tt.lastEvent, now), 0.0001)
		})
	}
}

func TestAdjustForRecencyClampsBoostAt100(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	assert.InDelta(t, 100, adjustForRecency(98, now.Add(-time.Hour), now), 0.0001)
}

func TestLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  models.TrustLevel
	}{
		{score: 0, want: models.TrustLevelNew},
		{score: 39.9, want: models.TrustLevelNew},
		{score: 40, want: models.TrustLevelBronze},
		{score: 59.9, want: models.TrustLevelBronze},
		{score: 60, want: models.TrustLevelSilver},
		{score: 74.9, want: models.TrustLevelSilver},
		{score: 75, want: models.TrustLevelGold},
		{score: 89.9, want: models.TrustLevelGold},
		{score: 90, want: models.TrustLevelPlatinum},
		{score: 100, want: models.TrustLevelPlatinum},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.score), "score %.1f", tt.score)
	}
}

func TestComputeEndToEnd(t *testing.T) {
	t.Parallel()

	// Total weight +15 on the 50 baseline with a recent last event:
	// 65 * 1.05 = 68.25, silver.
	now := time.Now().UTC()
	events := []*models.TrustEvent{
		weightedEvent(5, now.AddDate(0, 0, -50)),
		weightedEvent(10, now.AddDate(0, 0, -1)),
	}

	store := &mocks.MockTrustEventRepository{}
	store.On("TrustEventsBySubject", mock.Anything, "tenant-1", "subject-1").Return(events, nil)

	repo := NewRepository(store, slog.Default())

	score, err := repo.Compute(context.Background(), "tenant-1", "subject-1")
	require.NoError(t, err)
	assert.InDelta(t, 68.25, score.Score, 0.0001)
	assert.Equal(t, models.TrustLevelSilver, score.Level)
}

func ptr(f float64) *float64 {
	return &f
}
