package models

import "time"

type PriceAlert struct {
	ID             string     `json:"id"`
	UserPlatformID string     `json:"user_platform_id"`
	TokenSymbol    string     `json:"token_symbol"`
	TargetPrice    float64    `json:"target_price"`
	IsAbove        bool       `json:"is_above"`
	IsActive       bool       `json:"is_active"`
	Platform       string     `json:"platform"`
	CreatedAt      time.Time  `json:"created_at"`
	TriggeredAt    *time.Time `json:"triggered_at"`
}

// Crossed reports whether price satisfies the alert condition.
func (alert *PriceAlert) Crossed(price float64) bool {
	if alert.IsAbove {
		return price >= alert.TargetPrice
	}
	return price <= alert.TargetPrice
}
