package models

import "time"

const (
	PERIOD_DAILY   = "daily"
	PERIOD_WEEKLY  = "weekly"
	PERIOD_MONTHLY = "monthly"
	PERIOD_ALL     = "all_time"
)

type PerformanceMetrics struct {
	ID               string             `json:"id"`
	UserPlatformID   string             `json:"user_platform_id"`
	Period           string             `json:"period"`
	TotalTrades      int                `json:"total_trades"`
	SuccessfulTrades int                `json:"successful_trades"`
	TotalVolumeUSD   float64            `json:"total_volume_usd"`
	RealizedPnLUSD   float64            `json:"realized_pnl_usd"`
	WinRate          float64            `json:"win_rate"`
	TokenBreakdown   map[string]float64 `json:"token_breakdown"`
	RecordedAt       time.Time          `json:"recorded_at"`
}
