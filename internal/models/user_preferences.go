package models

import "time"

const (
	RISK_LOW    = "low"
	RISK_MEDIUM = "medium"
	RISK_HIGH   = "high"

	STYLE_CONSERVATIVE = "conservative"
	STYLE_BALANCED     = "balanced"
	STYLE_AGGRESSIVE   = "aggressive"
)

type UserPreferences struct {
	UserPlatformID       string               `json:"user_platform_id"`
	RiskTolerance        string               `json:"risk_tolerance"`
	TradingStyle         string               `json:"trading_style"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	TradingHours         TradingHours         `json:"trading_hours"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

type NotificationSettings struct {
	PriceAlerts        bool `json:"price_alerts"`
	TradeConfirmations bool `json:"trade_confirmations"`
	DailySummary       bool `json:"daily_summary"`
}

type TradingHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

func DefaultUserPreferences(userPlatformID string) *UserPreferences {
	return &UserPreferences{
		UserPlatformID: userPlatformID,
		RiskTolerance:  RISK_MEDIUM,
		TradingStyle:   STYLE_BALANCED,
		NotificationSettings: NotificationSettings{
			PriceAlerts:        true,
			TradeConfirmations: true,
		},
		TradingHours: TradingHours{
			Start:    "00:00",
			End:      "23:59",
			Timezone: "UTC",
		},
	}
}
