package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"

	"tradebot/internal/database"
)

// OpenDatabase opens the configured engine and wraps it in an adapter. The
// returned close function releases the handle.
func OpenDatabase(cfg *Config) (*database.Adapter, func() error, error) {
	switch cfg.DBDriver {
	case DRIVER_POSTGRES:
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(cfg.DBDSN),
			pgdriver.WithPassword(cfg.DBPassword),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		adapter, err := database.Open(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, db.Close, nil

	case DRIVER_SQLITE:
		sqldb, err := sql.Open("sqlite", sqliteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		// one writer; the adapter serialises calls on top of this
		sqldb.SetMaxOpenConns(1)

		adapter, err := database.Open(sqldb)
		if err != nil {
			sqldb.Close()
			return nil, nil, err
		}
		return adapter, sqldb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func sqliteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
