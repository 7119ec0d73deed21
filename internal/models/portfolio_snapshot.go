package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioSnapshot struct {
	ID             string                     `json:"id"`
	UserPlatformID string                     `json:"user_platform_id"`
	WalletID       string                     `json:"wallet_id"`
	TokenBalances  map[string]decimal.Decimal `json:"token_balances"`
	TokenPricesUSD map[string]float64         `json:"token_prices_usd"`
	TotalValueUSD  float64                    `json:"total_value_usd"`
	Timestamp      time.Time                  `json:"timestamp"`
}
