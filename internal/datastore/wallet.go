package datastore

import (
	"context"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const PREFIX_WALLET = "wallet"

var walletSchema = tableSchema{
	name: "wallets",
	create: `CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		encrypted_key TEXT NOT NULL,
		user_platform_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		settings TEXT NOT NULL DEFAULT '{}',
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_wallets_user_platform_id ON wallets (user_platform_id);`,
		`CREATE INDEX IF NOT EXISTS idx_wallets_platform ON wallets (platform);`,
		`CREATE INDEX IF NOT EXISTS idx_wallets_address ON wallets (address);`,
	},
}

const walletColumns = `id, address, encrypted_key, user_platform_id, platform, settings, is_active, created_at, updated_at`

func walletFromRow(ctx context.Context, row database.Row) *models.Wallet {
	return &models.Wallet{
		ID:             row.String("id"),
		Address:        row.String("address"),
		EncryptedKey:   row.String("encrypted_key"),
		UserPlatformID: row.String("user_platform_id"),
		Platform:       row.String("platform"),
		Settings:       decodeColumn(ctx, row, "settings", models.DefaultWalletSettings()),
		IsActive:       row.Bool("is_active"),
		CreatedAt:      row.Time("created_at"),
		UpdatedAt:      row.Time("updated_at"),
	}
}

func CreateWallet(ctx context.Context, db database.Querier, wallet *models.Wallet) (*models.Wallet, error) {
	if wallet.ID == "" {
		wallet.ID = pkg.NewID(PREFIX_WALLET)
	}
	wallet.CreatedAt = now()
	wallet.UpdatedAt = wallet.CreatedAt

	settings, err := encodeJSON("settings", wallet.Settings)
	if err != nil {
		return nil, err
	}

	_, err = db.Insert(ctx, `INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		wallet.ID, wallet.Address, wallet.EncryptedKey, wallet.UserPlatformID, wallet.Platform,
		settings, boolToInt(wallet.IsActive), formatTime(wallet.CreatedAt), formatTime(wallet.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetWalletByID returns nil when the wallet does not exist.
func GetWalletByID(ctx context.Context, db database.Querier, id string) (*models.Wallet, error) {
	row, err := db.QueryOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	if err != nil || row == nil {
		return nil, err
	}
	return walletFromRow(ctx, row), nil
}

func GetWalletByAddress(ctx context.Context, db database.Querier, userPlatformID, address string) (*models.Wallet, error) {
	row, err := db.QueryOne(ctx, `SELECT `+walletColumns+` FROM wallets
		WHERE user_platform_id = $1 AND LOWER(address) = LOWER($2)`, userPlatformID, address)
	if err != nil || row == nil {
		return nil, err
	}
	return walletFromRow(ctx, row), nil
}

func GetActiveWallet(ctx context.Context, db database.Querier, userPlatformID string) (*models.Wallet, error) {
	row, err := db.QueryOne(ctx, `SELECT `+walletColumns+` FROM wallets
		WHERE user_platform_id = $1 AND is_active = 1
		ORDER BY updated_at DESC LIMIT 1`, userPlatformID)
	if err != nil || row == nil {
		return nil, err
	}
	return walletFromRow(ctx, row), nil
}

func GetUserWallets(ctx context.Context, db database.Querier, userPlatformID string) ([]*models.Wallet, error) {
	result, err := db.Query(ctx, `SELECT `+walletColumns+` FROM wallets
		WHERE user_platform_id = $1 ORDER BY created_at ASC, id ASC`, userPlatformID)
	if err != nil {
		return nil, err
	}

	wallets := make([]*models.Wallet, 0, result.RowCount)
	for _, row := range result.Rows {
		wallets = append(wallets, walletFromRow(ctx, row))
	}
	return wallets, nil
}

func UpdateWalletSettings(ctx context.Context, db database.Querier, walletID string, settings models.WalletSettings) error {
	encoded, err := encodeJSON("settings", settings)
	if err != nil {
		return err
	}

	changes, err := db.Update(ctx, `UPDATE wallets SET settings = $1, updated_at = $2 WHERE id = $3`,
		encoded, formatTime(now()), walletID)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("wallet", walletID)
	}
	return nil
}

// SetActiveWallet deactivates every wallet of the user and activates
// walletID. Run it inside a transaction: the two statements are only
// meaningful together.
func SetActiveWallet(ctx context.Context, db database.Querier, userPlatformID, walletID string) error {
	ts := formatTime(now())
	if _, err := db.Update(ctx, `UPDATE wallets SET is_active = 0, updated_at = $1
		WHERE user_platform_id = $2 AND is_active = 1`, ts, userPlatformID); err != nil {
		return err
	}

	changes, err := db.Update(ctx, `UPDATE wallets SET is_active = 1, updated_at = $1
		WHERE id = $2 AND user_platform_id = $3`, ts, walletID, userPlatformID)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("wallet", walletID)
	}
	return nil
}

func DeactivateWallet(ctx context.Context, db database.Querier, walletID string) error {
	changes, err := db.Update(ctx, `UPDATE wallets SET is_active = 0, updated_at = $1 WHERE id = $2`,
		formatTime(now()), walletID)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("wallet", walletID)
	}
	return nil
}
