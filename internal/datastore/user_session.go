package datastore

import (
	"context"
	"time"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const (
	PREFIX_SESSION = "session"

	DEFAULT_SESSION_TTL = 30 * time.Minute
)

var userSessionSchema = tableSchema{
	name: "user_sessions",
	create: `CREATE TABLE IF NOT EXISTS user_sessions (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '{}',
		last_intent TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		last_activity_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_user_platform_id ON user_sessions (user_platform_id);`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_platform ON user_sessions (platform);`,
	},
}

const userSessionColumns = `id, user_platform_id, platform, context, last_intent, is_active, created_at, last_activity_at, expires_at`

func userSessionFromRow(ctx context.Context, row database.Row) *models.UserSession {
	return &models.UserSession{
		ID:             row.String("id"),
		UserPlatformID: row.String("user_platform_id"),
		Platform:       row.String("platform"),
		Context:        decodeColumn(ctx, row, "context", map[string]any{}),
		LastIntent:     row.String("last_intent"),
		IsActive:       row.Bool("is_active"),
		CreatedAt:      row.Time("created_at"),
		LastActivityAt: row.Time("last_activity_at"),
		ExpiresAt:      row.Time("expires_at"),
	}
}

// CreateSession opens a session that expires ttl after its last activity.
func CreateSession(ctx context.Context, db database.Querier, userPlatformID, platform string, ttl time.Duration) (*models.UserSession, error) {
	if ttl <= 0 {
		ttl = DEFAULT_SESSION_TTL
	}
	ts := now()
	session := &models.UserSession{
		ID:             pkg.NewID(PREFIX_SESSION),
		UserPlatformID: userPlatformID,
		Platform:       platform,
		Context:        map[string]any{},
		IsActive:       true,
		CreatedAt:      ts,
		LastActivityAt: ts,
		ExpiresAt:      ts.Add(ttl),
	}

	_, err := db.Insert(ctx, `INSERT INTO user_sessions (`+userSessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.UserPlatformID, session.Platform, "{}", session.LastIntent,
		boolToInt(session.IsActive), formatTime(session.CreatedAt), formatTime(session.LastActivityAt),
		formatTime(session.ExpiresAt),
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetActiveSession returns the newest unexpired session of the user, or nil.
func GetActiveSession(ctx context.Context, db database.Querier, userPlatformID, platform string) (*models.UserSession, error) {
	row, err := db.QueryOne(ctx, `SELECT `+userSessionColumns+` FROM user_sessions
		WHERE user_platform_id = $1 AND platform = $2 AND is_active = 1 AND expires_at > $3
		ORDER BY last_activity_at DESC LIMIT 1`, userPlatformID, platform, formatTime(now()))
	if err != nil || row == nil {
		return nil, err
	}
	return userSessionFromRow(ctx, row), nil
}

// TouchSession replaces the conversation context, records the last intent
// and pushes the expiry ttl into the future.
func TouchSession(ctx context.Context, db database.Querier, id string, sessionContext map[string]any, lastIntent string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DEFAULT_SESSION_TTL
	}
	if sessionContext == nil {
		sessionContext = map[string]any{}
	}
	encoded, err := encodeJSON("context", sessionContext)
	if err != nil {
		return err
	}

	ts := now()
	changes, err := db.Update(ctx, `UPDATE user_sessions
		SET context = $1, last_intent = $2, last_activity_at = $3, expires_at = $4
		WHERE id = $5 AND is_active = 1`,
		encoded, lastIntent, formatTime(ts), formatTime(ts.Add(ttl)), id)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("session", id)
	}
	return nil
}

func EndSession(ctx context.Context, db database.Querier, id string) (bool, error) {
	changes, err := db.Update(ctx, `UPDATE user_sessions SET is_active = 0 WHERE id = $1 AND is_active = 1`, id)
	if err != nil {
		return false, err
	}
	return changes > 0, nil
}

// ExpireStaleSessions ends every active session that expired before the
// given time and returns how many were ended.
func ExpireStaleSessions(ctx context.Context, db database.Querier, before time.Time) (int64, error) {
	return db.Update(ctx, `UPDATE user_sessions SET is_active = 0
		WHERE is_active = 1 AND expires_at <= $1`, formatTime(before))
}
