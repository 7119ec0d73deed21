package datastore

import (
	"context"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const (
	PREFIX_METRICS = "metrics"

	DEFAULT_METRICS_LIMIT = 30
)

var performanceMetricsSchema = tableSchema{
	name: "performance_metrics",
	create: `CREATE TABLE IF NOT EXISTS performance_metrics (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		period TEXT NOT NULL,
		total_trades INTEGER NOT NULL DEFAULT 0,
		successful_trades INTEGER NOT NULL DEFAULT 0,
		total_volume_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		realized_pnl_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		win_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		token_breakdown TEXT NOT NULL DEFAULT '{}',
		recorded_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_performance_metrics_user_platform_id ON performance_metrics (user_platform_id);`,
	},
}

const performanceMetricsColumns = `id, user_platform_id, period, total_trades, successful_trades, total_volume_usd, realized_pnl_usd, win_rate, token_breakdown, recorded_at`

func performanceMetricsFromRow(ctx context.Context, row database.Row) *models.PerformanceMetrics {
	return &models.PerformanceMetrics{
		ID:               row.String("id"),
		UserPlatformID:   row.String("user_platform_id"),
		Period:           row.String("period"),
		TotalTrades:      row.Int("total_trades"),
		SuccessfulTrades: row.Int("successful_trades"),
		TotalVolumeUSD:   row.Float64("total_volume_usd"),
		RealizedPnLUSD:   row.Float64("realized_pnl_usd"),
		WinRate:          row.Float64("win_rate"),
		TokenBreakdown:   decodeColumn(ctx, row, "token_breakdown", map[string]float64{}),
		RecordedAt:       row.Time("recorded_at"),
	}
}

// RecordPerformanceMetrics stores one computed snapshot. WinRate is derived
// from the trade counts when left at zero.
func RecordPerformanceMetrics(ctx context.Context, db database.Querier, metrics *models.PerformanceMetrics) (string, error) {
	if metrics.ID == "" {
		metrics.ID = pkg.NewID(PREFIX_METRICS)
	}
	if metrics.Period == "" {
		metrics.Period = models.PERIOD_ALL
	}
	if metrics.RecordedAt.IsZero() {
		metrics.RecordedAt = now()
	}
	if metrics.WinRate == 0 && metrics.TotalTrades > 0 {
		metrics.WinRate = float64(metrics.SuccessfulTrades) / float64(metrics.TotalTrades)
	}
	if metrics.TokenBreakdown == nil {
		metrics.TokenBreakdown = map[string]float64{}
	}

	breakdown, err := encodeJSON("token_breakdown", metrics.TokenBreakdown)
	if err != nil {
		return "", err
	}

	_, err = db.Insert(ctx, `INSERT INTO performance_metrics (`+performanceMetricsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		metrics.ID, metrics.UserPlatformID, metrics.Period, metrics.TotalTrades, metrics.SuccessfulTrades,
		metrics.TotalVolumeUSD, metrics.RealizedPnLUSD, metrics.WinRate, breakdown, formatTime(metrics.RecordedAt),
	)
	if err != nil {
		return "", err
	}
	return metrics.ID, nil
}

func GetLatestPerformanceMetrics(ctx context.Context, db database.Querier, userPlatformID, period string) (*models.PerformanceMetrics, error) {
	row, err := db.QueryOne(ctx, `SELECT `+performanceMetricsColumns+` FROM performance_metrics
		WHERE user_platform_id = $1 AND period = $2 ORDER BY recorded_at DESC, id DESC LIMIT 1`,
		userPlatformID, period)
	if err != nil || row == nil {
		return nil, err
	}
	return performanceMetricsFromRow(ctx, row), nil
}

// GetPerformanceHistory returns the newest snapshots first.
func GetPerformanceHistory(ctx context.Context, db database.Querier, userPlatformID string, limit int) ([]*models.PerformanceMetrics, error) {
	result, err := db.Query(ctx, `SELECT `+performanceMetricsColumns+` FROM performance_metrics
		WHERE user_platform_id = $1 ORDER BY recorded_at DESC, id DESC LIMIT $2`,
		userPlatformID, clampLimit(limit, DEFAULT_METRICS_LIMIT))
	if err != nil {
		return nil, err
	}

	history := make([]*models.PerformanceMetrics, 0, result.RowCount)
	for _, row := range result.Rows {
		history = append(history, performanceMetricsFromRow(ctx, row))
	}
	return history, nil
}
