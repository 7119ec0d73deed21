package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/models"
)

func TestUserPreferences(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	prefs, err := GetUserPreferences(ctx, db, "telegram:1")
	require.NoError(t, err)
	assert.Equal(t, models.RISK_MEDIUM, prefs.RiskTolerance)
	assert.Equal(t, models.STYLE_BALANCED, prefs.TradingStyle)
	assert.True(t, prefs.NotificationSettings.PriceAlerts)
	assert.Equal(t, "UTC", prefs.TradingHours.Timezone)

	n, err := CountRows(ctx, db, "user_preferences")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	prefs.RiskTolerance = models.RISK_HIGH
	prefs.TradingStyle = models.STYLE_AGGRESSIVE
	prefs.NotificationSettings.DailySummary = true
	prefs.TradingHours = models.TradingHours{Enabled: true, Start: "09:00", End: "17:00", Timezone: "Europe/Berlin"}
	require.NoError(t, UpdateUserPreferences(ctx, db, prefs))

	got, err := GetUserPreferences(ctx, db, "telegram:1")
	require.NoError(t, err)
	assert.Equal(t, models.RISK_HIGH, got.RiskTolerance)
	assert.Equal(t, models.STYLE_AGGRESSIVE, got.TradingStyle)
	assert.True(t, got.NotificationSettings.DailySummary)
	assert.Equal(t, prefs.TradingHours, got.TradingHours)

	n, err = CountRows(ctx, db, "user_preferences")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	t.Run("update without prior read inserts", func(t *testing.T) {
		fresh := models.DefaultUserPreferences("whatsapp:9")
		fresh.RiskTolerance = models.RISK_LOW
		require.NoError(t, UpdateUserPreferences(ctx, db, fresh))

		got, err := GetUserPreferences(ctx, db, "whatsapp:9")
		require.NoError(t, err)
		assert.Equal(t, models.RISK_LOW, got.RiskTolerance)
	})
}
