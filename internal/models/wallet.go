package models

import "time"

const (
	PLATFORM_TELEGRAM = "telegram"
	PLATFORM_WHATSAPP = "whatsapp"
	PLATFORM_API      = "api"
)

type Wallet struct {
	ID             string         `json:"id"`
	Address        string         `json:"address"`
	EncryptedKey   string         `json:"-"`
	UserPlatformID string         `json:"user_platform_id"`
	Platform       string         `json:"platform"`
	Settings       WalletSettings `json:"settings"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type WalletSettings struct {
	Label       string `json:"label,omitempty"`
	SlippageBps int    `json:"slippage_bps"`
	GasPriority string `json:"gas_priority"`
	AutoApprove bool   `json:"auto_approve"`
}

func DefaultWalletSettings() WalletSettings {
	return WalletSettings{
		SlippageBps: 100,
		GasPriority: "standard",
	}
}
