package datastore

import (
	"context"
	"fmt"
	"strings"

	"tradebot/internal/database"
)

type tableSchema struct {
	name    string
	create  string
	indexes []string
}

var schemas = []tableSchema{
	walletSchema,
	tradeHistorySchema,
	priceAlertSchema,
	portfolioSnapshotSchema,
	watchlistSchema,
	tokenRegistrySchema,
	userPreferencesSchema,
	educationProgressSchema,
	performanceMetricsSchema,
	userSessionSchema,
}

// Migrate creates every table, then every index. Both batches use
// IF NOT EXISTS, so running it against an initialised database changes
// nothing.
func Migrate(ctx context.Context, db database.Executor) error {
	tables := make([]string, 0, len(schemas))
	indexes := make([]string, 0, len(schemas)*3)
	for _, s := range schemas {
		tables = append(tables, s.create)
		indexes = append(indexes, s.indexes...)
	}

	if err := db.Execute(ctx, strings.Join(tables, "\n")); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := db.Execute(ctx, strings.Join(indexes, "\n")); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func Tables() []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.name)
	}
	return names
}

// CountRows returns the number of rows in table. Only names from Tables
// are accepted.
func CountRows(ctx context.Context, db database.Querier, table string) (int, error) {
	known := false
	for _, name := range Tables() {
		if name == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	row, err := db.QueryOne(ctx, "SELECT COUNT(*) AS n FROM "+table)
	if err != nil {
		return 0, err
	}
	return row.Int("n"), nil
}
