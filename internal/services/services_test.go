package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/pkg/caching"
)

// newTestContainer wires the services over an in-memory database and a
// local cache. Redis-backed pieces are left out.
func newTestContainer(t *testing.T) *do.Injector {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	adapter, err := database.New(database.Embedded{DB: sqldb})
	require.NoError(t, err)
	require.NoError(t, datastore.Migrate(context.Background(), adapter))

	cache := caching.New(caching.Options{})

	injector := do.New()
	do.ProvideValue(injector, adapter)
	do.ProvideValue[caching.Cache](injector, cache)
	do.Provide(injector, NewServiceToken)
	do.Provide(injector, NewServiceWallet)
	do.Provide(injector, NewServiceAlert)
	do.Provide(injector, NewServiceSession)
	return injector
}
