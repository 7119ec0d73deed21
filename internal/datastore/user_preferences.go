package datastore

import (
	"context"

	"tradebot/internal/database"
	"tradebot/internal/models"
)

var userPreferencesSchema = tableSchema{
	name: "user_preferences",
	create: `CREATE TABLE IF NOT EXISTS user_preferences (
		user_platform_id TEXT PRIMARY KEY,
		risk_tolerance TEXT NOT NULL,
		trading_style TEXT NOT NULL,
		notification_settings TEXT NOT NULL DEFAULT '{}',
		trading_hours TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
}

const userPreferencesColumns = `user_platform_id, risk_tolerance, trading_style, notification_settings, trading_hours, created_at, updated_at`

func userPreferencesFromRow(ctx context.Context, row database.Row) *models.UserPreferences {
	defaults := models.DefaultUserPreferences(row.String("user_platform_id"))
	return &models.UserPreferences{
		UserPlatformID:       defaults.UserPlatformID,
		RiskTolerance:        row.String("risk_tolerance"),
		TradingStyle:         row.String("trading_style"),
		NotificationSettings: decodeColumn(ctx, row, "notification_settings", defaults.NotificationSettings),
		TradingHours:         decodeColumn(ctx, row, "trading_hours", defaults.TradingHours),
		CreatedAt:            row.Time("created_at"),
		UpdatedAt:            row.Time("updated_at"),
	}
}

// GetUserPreferences returns the user's preferences, storing the defaults
// first if the user has none yet.
func GetUserPreferences(ctx context.Context, db database.Querier, userPlatformID string) (*models.UserPreferences, error) {
	row, err := db.QueryOne(ctx, `SELECT `+userPreferencesColumns+` FROM user_preferences
		WHERE user_platform_id = $1`, userPlatformID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return userPreferencesFromRow(ctx, row), nil
	}

	prefs := models.DefaultUserPreferences(userPlatformID)
	if err := upsertUserPreferences(ctx, db, prefs, false); err != nil {
		return nil, err
	}

	row, err = db.QueryOne(ctx, `SELECT `+userPreferencesColumns+` FROM user_preferences
		WHERE user_platform_id = $1`, userPlatformID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFound("user preferences", userPlatformID)
	}
	return userPreferencesFromRow(ctx, row), nil
}

func UpdateUserPreferences(ctx context.Context, db database.Querier, prefs *models.UserPreferences) error {
	return upsertUserPreferences(ctx, db, prefs, true)
}

func upsertUserPreferences(ctx context.Context, db database.Querier, prefs *models.UserPreferences, overwrite bool) error {
	notifications, err := encodeJSON("notification_settings", prefs.NotificationSettings)
	if err != nil {
		return err
	}
	hours, err := encodeJSON("trading_hours", prefs.TradingHours)
	if err != nil {
		return err
	}

	ts := now()
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = ts
	}
	prefs.UpdatedAt = ts

	conflict := `ON CONFLICT (user_platform_id) DO NOTHING`
	if overwrite {
		conflict = `ON CONFLICT (user_platform_id) DO UPDATE SET
			risk_tolerance = excluded.risk_tolerance,
			trading_style = excluded.trading_style,
			notification_settings = excluded.notification_settings,
			trading_hours = excluded.trading_hours,
			updated_at = excluded.updated_at`
	}

	_, err = db.Insert(ctx, `INSERT INTO user_preferences (`+userPreferencesColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7) `+conflict,
		prefs.UserPlatformID, prefs.RiskTolerance, prefs.TradingStyle, notifications, hours,
		formatTime(prefs.CreatedAt), formatTime(prefs.UpdatedAt),
	)
	return err
}
