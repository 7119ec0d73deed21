package datastore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/models"
)

func TestPerformanceMetrics(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		id, err := RecordPerformanceMetrics(ctx, db, &models.PerformanceMetrics{
			UserPlatformID:   "telegram:1",
			Period:           models.PERIOD_DAILY,
			TotalTrades:      4,
			SuccessfulTrades: i + 1,
			TotalVolumeUSD:   100,
			TokenBreakdown:   map[string]float64{"PLS": 60, "HEX": 40},
			RecordedAt:       base.Add(time.Duration(i) * 24 * time.Hour),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "metrics_"))
	}

	latest, err := GetLatestPerformanceMetrics(ctx, db, "telegram:1", models.PERIOD_DAILY)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.SuccessfulTrades)
	assert.InDelta(t, 0.75, latest.WinRate, 1e-9)
	assert.Equal(t, map[string]float64{"PLS": 60, "HEX": 40}, latest.TokenBreakdown)

	weekly, err := GetLatestPerformanceMetrics(ctx, db, "telegram:1", models.PERIOD_WEEKLY)
	require.NoError(t, err)
	assert.Nil(t, weekly)

	history, err := GetPerformanceHistory(ctx, db, "telegram:1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].RecordedAt.After(history[1].RecordedAt))
}
