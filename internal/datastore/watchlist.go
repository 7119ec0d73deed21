package datastore

import (
	"context"
	"slices"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const PREFIX_WATCHLIST = "watchlist"

var watchlistSchema = tableSchema{
	name: "watchlists",
	create: `CREATE TABLE IF NOT EXISTS watchlists (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		name TEXT NOT NULL,
		token_symbols TEXT NOT NULL DEFAULT '[]',
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_watchlists_user_platform_id ON watchlists (user_platform_id);`,
	},
}

const watchlistColumns = `id, user_platform_id, name, token_symbols, is_default, created_at, updated_at`

func watchlistFromRow(ctx context.Context, row database.Row) *models.Watchlist {
	return &models.Watchlist{
		ID:             row.String("id"),
		UserPlatformID: row.String("user_platform_id"),
		Name:           row.String("name"),
		TokenSymbols:   decodeColumn(ctx, row, "token_symbols", []string{}),
		IsDefault:      row.Bool("is_default"),
		CreatedAt:      row.Time("created_at"),
		UpdatedAt:      row.Time("updated_at"),
	}
}

func CreateWatchlist(ctx context.Context, db database.Querier, watchlist *models.Watchlist) (*models.Watchlist, error) {
	if watchlist.ID == "" {
		watchlist.ID = pkg.NewID(PREFIX_WATCHLIST)
	}
	if watchlist.TokenSymbols == nil {
		watchlist.TokenSymbols = []string{}
	}
	watchlist.CreatedAt = now()
	watchlist.UpdatedAt = watchlist.CreatedAt

	symbols, err := encodeJSON("token_symbols", watchlist.TokenSymbols)
	if err != nil {
		return nil, err
	}

	_, err = db.Insert(ctx, `INSERT INTO watchlists (`+watchlistColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		watchlist.ID, watchlist.UserPlatformID, watchlist.Name, symbols,
		boolToInt(watchlist.IsDefault), formatTime(watchlist.CreatedAt), formatTime(watchlist.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return watchlist, nil
}

// GetUserWatchlists lists the user's watchlists, default first. A watchlist
// whose symbol list is unreadable is returned with an empty list.
func GetUserWatchlists(ctx context.Context, db database.Querier, userPlatformID string) ([]*models.Watchlist, error) {
	result, err := db.Query(ctx, `SELECT `+watchlistColumns+` FROM watchlists
		WHERE user_platform_id = $1 ORDER BY is_default DESC, created_at ASC, id ASC`, userPlatformID)
	if err != nil {
		return nil, err
	}

	watchlists := make([]*models.Watchlist, 0, result.RowCount)
	for _, row := range result.Rows {
		watchlists = append(watchlists, watchlistFromRow(ctx, row))
	}
	return watchlists, nil
}

func GetWatchlist(ctx context.Context, db database.Querier, id string) (*models.Watchlist, error) {
	row, err := db.QueryOne(ctx, `SELECT `+watchlistColumns+` FROM watchlists WHERE id = $1`, id)
	if err != nil || row == nil {
		return nil, err
	}
	return watchlistFromRow(ctx, row), nil
}

func GetDefaultWatchlist(ctx context.Context, db database.Querier, userPlatformID string) (*models.Watchlist, error) {
	row, err := db.QueryOne(ctx, `SELECT `+watchlistColumns+` FROM watchlists
		WHERE user_platform_id = $1 AND is_default = 1 ORDER BY created_at ASC LIMIT 1`, userPlatformID)
	if err != nil || row == nil {
		return nil, err
	}
	return watchlistFromRow(ctx, row), nil
}

// AddTokenToWatchlist appends symbol unless it is already present and
// returns the resulting list.
func AddTokenToWatchlist(ctx context.Context, db database.Querier, id, symbol string) ([]string, error) {
	symbol = pkg.NormalizeSymbol(symbol)
	return updateWatchlistSymbols(ctx, db, id, func(symbols []string) []string {
		if slices.Contains(symbols, symbol) {
			return symbols
		}
		return append(symbols, symbol)
	})
}

func RemoveTokenFromWatchlist(ctx context.Context, db database.Querier, id, symbol string) ([]string, error) {
	symbol = pkg.NormalizeSymbol(symbol)
	return updateWatchlistSymbols(ctx, db, id, func(symbols []string) []string {
		return slices.DeleteFunc(symbols, func(s string) bool { return s == symbol })
	})
}

// updateWatchlistSymbols is a read-modify-write of the symbol list; callers
// that need it to be isolated run it in a transaction.
func updateWatchlistSymbols(ctx context.Context, db database.Querier, id string, change func([]string) []string) ([]string, error) {
	watchlist, err := GetWatchlist(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if watchlist == nil {
		return nil, notFound("watchlist", id)
	}

	symbols := change(watchlist.TokenSymbols)
	encoded, err := encodeJSON("token_symbols", symbols)
	if err != nil {
		return nil, err
	}

	if _, err := db.Update(ctx, `UPDATE watchlists SET token_symbols = $1, updated_at = $2 WHERE id = $3`,
		encoded, formatTime(now()), id); err != nil {
		return nil, err
	}
	return symbols, nil
}

func RenameWatchlist(ctx context.Context, db database.Querier, id, name string) error {
	changes, err := db.Update(ctx, `UPDATE watchlists SET name = $1, updated_at = $2 WHERE id = $3`,
		name, formatTime(now()), id)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("watchlist", id)
	}
	return nil
}

func DeleteWatchlist(ctx context.Context, db database.Querier, userPlatformID, id string) (bool, error) {
	changes, err := db.Update(ctx, `DELETE FROM watchlists WHERE id = $1 AND user_platform_id = $2`,
		id, userPlatformID)
	if err != nil {
		return false, err
	}
	return changes > 0, nil
}
