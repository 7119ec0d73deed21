package datastore

import (
	"context"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const PREFIX_ALERT = "alert"

var priceAlertSchema = tableSchema{
	name: "price_alerts",
	create: `CREATE TABLE IF NOT EXISTS price_alerts (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		token_symbol TEXT NOT NULL,
		target_price DOUBLE PRECISION NOT NULL,
		is_above INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		platform TEXT NOT NULL,
		created_at TEXT NOT NULL,
		triggered_at TEXT
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_price_alerts_user_platform_id ON price_alerts (user_platform_id);`,
		`CREATE INDEX IF NOT EXISTS idx_price_alerts_token_active ON price_alerts (token_symbol, is_active);`,
	},
}

const priceAlertColumns = `id, user_platform_id, token_symbol, target_price, is_above, is_active, platform, created_at, triggered_at`

func priceAlertFromRow(row database.Row) *models.PriceAlert {
	return &models.PriceAlert{
		ID:             row.String("id"),
		UserPlatformID: row.String("user_platform_id"),
		TokenSymbol:    row.String("token_symbol"),
		TargetPrice:    row.Float64("target_price"),
		IsAbove:        row.Bool("is_above"),
		IsActive:       row.Bool("is_active"),
		Platform:       row.String("platform"),
		CreatedAt:      row.Time("created_at"),
		TriggeredAt:    row.TimePtr("triggered_at"),
	}
}

func CreatePriceAlert(ctx context.Context, db database.Querier, alert *models.PriceAlert) (string, error) {
	if alert.ID == "" {
		alert.ID = pkg.NewID(PREFIX_ALERT)
	}
	alert.TokenSymbol = pkg.NormalizeSymbol(alert.TokenSymbol)
	alert.CreatedAt = now()

	_, err := db.Insert(ctx, `INSERT INTO price_alerts (`+priceAlertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, alert.UserPlatformID, alert.TokenSymbol, alert.TargetPrice,
		boolToInt(alert.IsAbove), boolToInt(alert.IsActive), alert.Platform,
		formatTime(alert.CreatedAt), formatTimePtr(alert.TriggeredAt),
	)
	if err != nil {
		return "", err
	}
	return alert.ID, nil
}

func GetPriceAlert(ctx context.Context, db database.Querier, id string) (*models.PriceAlert, error) {
	row, err := db.QueryOne(ctx, `SELECT `+priceAlertColumns+` FROM price_alerts WHERE id = $1`, id)
	if err != nil || row == nil {
		return nil, err
	}
	return priceAlertFromRow(row), nil
}

// GetActivePriceAlerts returns untriggered alerts, for one user or, when
// userPlatformID is empty, for everyone.
func GetActivePriceAlerts(ctx context.Context, db database.Querier, userPlatformID string) ([]*models.PriceAlert, error) {
	if userPlatformID == "" {
		return queryPriceAlerts(ctx, db, `SELECT `+priceAlertColumns+` FROM price_alerts
			WHERE is_active = 1 ORDER BY created_at ASC, id ASC`)
	}
	return queryPriceAlerts(ctx, db, `SELECT `+priceAlertColumns+` FROM price_alerts
		WHERE is_active = 1 AND user_platform_id = $1 ORDER BY created_at ASC, id ASC`, userPlatformID)
}

func GetActiveAlertsForToken(ctx context.Context, db database.Querier, tokenSymbol string) ([]*models.PriceAlert, error) {
	return queryPriceAlerts(ctx, db, `SELECT `+priceAlertColumns+` FROM price_alerts
		WHERE token_symbol = $1 AND is_active = 1 ORDER BY created_at ASC, id ASC`,
		pkg.NormalizeSymbol(tokenSymbol))
}

// GetUserPriceAlerts includes triggered alerts, newest first.
func GetUserPriceAlerts(ctx context.Context, db database.Querier, userPlatformID string) ([]*models.PriceAlert, error) {
	return queryPriceAlerts(ctx, db, `SELECT `+priceAlertColumns+` FROM price_alerts
		WHERE user_platform_id = $1 ORDER BY created_at DESC, id DESC`, userPlatformID)
}

func queryPriceAlerts(ctx context.Context, db database.Querier, query string, params ...any) ([]*models.PriceAlert, error) {
	result, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	alerts := make([]*models.PriceAlert, 0, result.RowCount)
	for _, row := range result.Rows {
		alerts = append(alerts, priceAlertFromRow(row))
	}
	return alerts, nil
}

// TriggerPriceAlert moves an alert from active to triggered. It reports
// true only for the call that performed the transition.
func TriggerPriceAlert(ctx context.Context, db database.Querier, id string) (bool, error) {
	changes, err := db.Update(ctx, `UPDATE price_alerts SET is_active = 0, triggered_at = $1
		WHERE id = $2 AND is_active = 1`, formatTime(now()), id)
	if err != nil {
		return false, err
	}
	return changes > 0, nil
}

// RemovePriceAlert deactivates an alert without stamping triggered_at.
func RemovePriceAlert(ctx context.Context, db database.Querier, userPlatformID, id string) (bool, error) {
	changes, err := db.Update(ctx, `UPDATE price_alerts SET is_active = 0
		WHERE id = $1 AND user_platform_id = $2 AND is_active = 1`, id, userPlatformID)
	if err != nil {
		return false, err
	}
	return changes > 0, nil
}
