package datastore

import (
	"context"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const (
	PREFIX_TRADE = "trade"

	DEFAULT_TRADE_LIMIT = 50
)

var tradeHistorySchema = tableSchema{
	name: "trade_history",
	create: `CREATE TABLE IF NOT EXISTS trade_history (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL,
		from_token TEXT NOT NULL,
		to_token TEXT NOT NULL,
		amount_in TEXT NOT NULL,
		amount_out TEXT NOT NULL,
		success INTEGER NOT NULL DEFAULT 0,
		tx_hash TEXT,
		error_message TEXT,
		platform TEXT NOT NULL,
		traded_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_trade_history_user_platform_id ON trade_history (user_platform_id);`,
		`CREATE INDEX IF NOT EXISTS idx_trade_history_wallet_id ON trade_history (wallet_id);`,
	},
}

const tradeColumns = `id, user_platform_id, wallet_id, from_token, to_token, amount_in, amount_out, success, tx_hash, error_message, platform, traded_at`

func tradeFromRow(row database.Row) *models.Trade {
	return &models.Trade{
		ID:             row.String("id"),
		UserPlatformID: row.String("user_platform_id"),
		WalletID:       row.String("wallet_id"),
		FromToken:      row.String("from_token"),
		ToToken:        row.String("to_token"),
		AmountIn:       row.Decimal("amount_in"),
		AmountOut:      row.Decimal("amount_out"),
		Success:        row.Bool("success"),
		TxHash:         row.StringPtr("tx_hash"),
		ErrorMessage:   row.StringPtr("error_message"),
		Platform:       row.String("platform"),
		Timestamp:      row.Time("traded_at"),
	}
}

// RecordTrade appends a trade. Trades are never updated afterwards.
func RecordTrade(ctx context.Context, db database.Querier, trade *models.Trade) (string, error) {
	if trade.ID == "" {
		trade.ID = pkg.NewID(PREFIX_TRADE)
	}
	if trade.Timestamp.IsZero() {
		trade.Timestamp = now()
	}

	_, err := db.Insert(ctx, `INSERT INTO trade_history (`+tradeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		trade.ID, trade.UserPlatformID, trade.WalletID, trade.FromToken, trade.ToToken,
		trade.AmountIn.String(), trade.AmountOut.String(), boolToInt(trade.Success),
		trade.TxHash, trade.ErrorMessage, trade.Platform, formatTime(trade.Timestamp),
	)
	if err != nil {
		return "", err
	}
	return trade.ID, nil
}

func GetUserTrades(ctx context.Context, db database.Querier, userPlatformID string, limit int) ([]*models.Trade, error) {
	return queryTrades(ctx, db, `SELECT `+tradeColumns+` FROM trade_history
		WHERE user_platform_id = $1 ORDER BY traded_at DESC, id DESC LIMIT $2`,
		userPlatformID, clampLimit(limit, DEFAULT_TRADE_LIMIT))
}

func GetWalletTrades(ctx context.Context, db database.Querier, walletID string, limit int) ([]*models.Trade, error) {
	return queryTrades(ctx, db, `SELECT `+tradeColumns+` FROM trade_history
		WHERE wallet_id = $1 ORDER BY traded_at DESC, id DESC LIMIT $2`,
		walletID, clampLimit(limit, DEFAULT_TRADE_LIMIT))
}

func queryTrades(ctx context.Context, db database.Querier, query string, params ...any) ([]*models.Trade, error) {
	result, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	trades := make([]*models.Trade, 0, result.RowCount)
	for _, row := range result.Rows {
		trades = append(trades, tradeFromRow(row))
	}
	return trades, nil
}

func GetTradeStats(ctx context.Context, db database.Querier, userPlatformID string) (*models.TradeStats, error) {
	row, err := db.QueryOne(ctx, `SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) AS successful
		FROM trade_history WHERE user_platform_id = $1`, userPlatformID)
	if err != nil {
		return nil, err
	}

	stats := &models.TradeStats{}
	if row != nil {
		stats.Total = row.Int("total")
		stats.Successful = row.Int("successful")
		stats.Failed = stats.Total - stats.Successful
	}
	return stats, nil
}
