package datastore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"tradebot/internal/database"
	"tradebot/internal/models"
)

// Runs against a real server only when TEST_POSTGRES_DSN is set.
func newPostgresDB(t *testing.T) *database.Adapter {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	t.Cleanup(func() { db.Close() })

	adapter, err := database.Open(db)
	require.NoError(t, err)
	require.Equal(t, database.DialectNetworked, adapter.Dialect())
	require.NoError(t, Migrate(context.Background(), adapter))
	return adapter
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	user := "telegram:" + uuid.NewString()

	t.Run("migrate is idempotent", func(t *testing.T) {
		require.NoError(t, Migrate(ctx, db))
	})

	t.Run("switching the active wallet rolls back as a unit", func(t *testing.T) {
		first, err := CreateWallet(ctx, db, newWallet(user, "0x"+uuid.NewString()[:8]))
		require.NoError(t, err)
		require.NoError(t, SetActiveWallet(ctx, db, user, first.ID))

		boom := errors.New("boom")
		err = db.Transaction(ctx, func(ctx context.Context, tx database.Querier) error {
			if _, err := tx.Update(ctx, `UPDATE wallets SET is_active = 0 WHERE user_platform_id = $1`, user); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		active, err := GetActiveWallet(ctx, db, user)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, first.ID, active.ID)
	})

	t.Run("alert triggers once", func(t *testing.T) {
		id, err := CreatePriceAlert(ctx, db, &models.PriceAlert{
			UserPlatformID: user,
			TokenSymbol:    "hex",
			TargetPrice:    0.01,
			IsAbove:        true,
			IsActive:       true,
		})
		require.NoError(t, err)

		fired, err := TriggerPriceAlert(ctx, db, id)
		require.NoError(t, err)
		assert.True(t, fired)

		fired, err = TriggerPriceAlert(ctx, db, id)
		require.NoError(t, err)
		assert.False(t, fired)
	})

	t.Run("corrupt watchlist symbols read as empty", func(t *testing.T) {
		watchlist, err := CreateWatchlist(ctx, db, &models.Watchlist{UserPlatformID: user, Name: "main"})
		require.NoError(t, err)

		_, err = db.Update(ctx, `UPDATE watchlists SET token_symbols = $1 WHERE id = $2`, "{not json", watchlist.ID)
		require.NoError(t, err)

		got, err := GetWatchlist(ctx, db, watchlist.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{}, got.TokenSymbols)
	})
}
