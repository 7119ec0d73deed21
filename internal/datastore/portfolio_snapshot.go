package datastore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const (
	PREFIX_SNAPSHOT = "snapshot"

	DEFAULT_SNAPSHOT_LIMIT = 100
)

var portfolioSnapshotSchema = tableSchema{
	name: "portfolio_snapshots",
	create: `CREATE TABLE IF NOT EXISTS portfolio_snapshots (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL,
		token_balances TEXT NOT NULL DEFAULT '{}',
		token_prices_usd TEXT NOT NULL DEFAULT '{}',
		total_value_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		captured_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_portfolio_snapshots_user_platform_id ON portfolio_snapshots (user_platform_id);`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_snapshots_wallet_id ON portfolio_snapshots (wallet_id);`,
	},
}

const portfolioSnapshotColumns = `id, user_platform_id, wallet_id, token_balances, token_prices_usd, total_value_usd, captured_at`

func portfolioSnapshotFromRow(ctx context.Context, row database.Row) *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		ID:             row.String("id"),
		UserPlatformID: row.String("user_platform_id"),
		WalletID:       row.String("wallet_id"),
		TokenBalances:  decodeColumn(ctx, row, "token_balances", map[string]decimal.Decimal{}),
		TokenPricesUSD: decodeColumn(ctx, row, "token_prices_usd", map[string]float64{}),
		TotalValueUSD:  row.Float64("total_value_usd"),
		Timestamp:      row.Time("captured_at"),
	}
}

func SavePortfolioSnapshot(ctx context.Context, db database.Querier, snapshot *models.PortfolioSnapshot) (string, error) {
	if snapshot.ID == "" {
		snapshot.ID = pkg.NewID(PREFIX_SNAPSHOT)
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = now()
	}
	if snapshot.TokenBalances == nil {
		snapshot.TokenBalances = map[string]decimal.Decimal{}
	}
	if snapshot.TokenPricesUSD == nil {
		snapshot.TokenPricesUSD = map[string]float64{}
	}

	balances, err := encodeJSON("token_balances", snapshot.TokenBalances)
	if err != nil {
		return "", err
	}
	prices, err := encodeJSON("token_prices_usd", snapshot.TokenPricesUSD)
	if err != nil {
		return "", err
	}

	_, err = db.Insert(ctx, `INSERT INTO portfolio_snapshots (`+portfolioSnapshotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		snapshot.ID, snapshot.UserPlatformID, snapshot.WalletID, balances, prices,
		snapshot.TotalValueUSD, formatTime(snapshot.Timestamp),
	)
	if err != nil {
		return "", err
	}
	return snapshot.ID, nil
}

func GetLatestPortfolioSnapshot(ctx context.Context, db database.Querier, walletID string) (*models.PortfolioSnapshot, error) {
	row, err := db.QueryOne(ctx, `SELECT `+portfolioSnapshotColumns+` FROM portfolio_snapshots
		WHERE wallet_id = $1 ORDER BY captured_at DESC, id DESC LIMIT 1`, walletID)
	if err != nil || row == nil {
		return nil, err
	}
	return portfolioSnapshotFromRow(ctx, row), nil
}

// GetPortfolioHistory returns snapshots captured at or after since, oldest
// first.
func GetPortfolioHistory(ctx context.Context, db database.Querier, walletID string, since time.Time, limit int) ([]*models.PortfolioSnapshot, error) {
	result, err := db.Query(ctx, `SELECT `+portfolioSnapshotColumns+` FROM portfolio_snapshots
		WHERE wallet_id = $1 AND captured_at >= $2 ORDER BY captured_at ASC, id ASC LIMIT $3`,
		walletID, formatTime(since), clampLimit(limit, DEFAULT_SNAPSHOT_LIMIT))
	if err != nil {
		return nil, err
	}

	snapshots := make([]*models.PortfolioSnapshot, 0, result.RowCount)
	for _, row := range result.Rows {
		snapshots = append(snapshots, portfolioSnapshotFromRow(ctx, row))
	}
	return snapshots, nil
}
