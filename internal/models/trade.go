package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one swap attempt. Rows are never updated once written.
type Trade struct {
	ID             string          `json:"id"`
	UserPlatformID string          `json:"user_platform_id"`
	WalletID       string          `json:"wallet_id"`
	FromToken      string          `json:"from_token"`
	ToToken        string          `json:"to_token"`
	AmountIn       decimal.Decimal `json:"amount_in"`
	AmountOut      decimal.Decimal `json:"amount_out"`
	Success        bool            `json:"success"`
	TxHash         *string         `json:"tx_hash"`
	ErrorMessage   *string         `json:"error_message"`
	Platform       string          `json:"platform"`
	Timestamp      time.Time       `json:"timestamp"`
}

type TradeStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
