package models

import "time"

type Watchlist struct {
	ID             string    `json:"id"`
	UserPlatformID string    `json:"user_platform_id"`
	Name           string    `json:"name"`
	TokenSymbols   []string  `json:"token_symbols"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
