package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// A file database with a multi-connection pool: without the adapter mutex a
// root call could land on another connection while a transaction holds the
// write lock.
func newEmbeddedFile(t *testing.T, conns int) *Adapter {
	t.Helper()

	path := filepath.Join(t.TempDir(), "items.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	db.SetMaxOpenConns(conns)
	t.Cleanup(func() { db.Close() })

	a, err := New(Embedded{DB: db})
	require.NoError(t, err)
	require.NoError(t, a.Execute(context.Background(), testTable))
	return a
}

func TestAdapter_EmbeddedSerialisesConcurrentCalls(t *testing.T) {
	const (
		transactions = 50
		rootInserts  = 25
	)

	ctx := context.Background()
	a := newEmbeddedFile(t, 4)
	errRollback := errors.New("rollback")

	var wg errgroup.Group
	for i := 0; i < transactions; i++ {
		i := i
		wg.Go(func() error {
			err := a.Transaction(ctx, func(ctx context.Context, tx Querier) error {
				ids := []string{fmt.Sprintf("tx_%d_0", i), fmt.Sprintf("tx_%d_1", i)}
				for _, id := range ids {
					if _, err := tx.Insert(ctx, `INSERT INTO items (id, name) VALUES ($1, $2)`, id, "tx"); err != nil {
						return err
					}
				}

				// the transaction sees its own writes
				row, err := tx.QueryOne(ctx, `SELECT COUNT(*) AS n FROM items WHERE id = $1 OR id = $2`, ids[0], ids[1])
				if err != nil {
					return err
				}
				if row.Int("n") != 2 {
					return fmt.Errorf("transaction %d sees %d of its rows", i, row.Int("n"))
				}

				if i%2 == 1 {
					return errRollback
				}
				return nil
			})
			if errors.Is(err, errRollback) {
				return nil
			}
			return err
		})
	}
	for i := 0; i < rootInserts; i++ {
		i := i
		wg.Go(func() error {
			_, err := a.Insert(ctx, `INSERT INTO items (id, name) VALUES ($1, $2)`, fmt.Sprintf("root_%d", i), "root")
			return err
		})
	}
	require.NoError(t, wg.Wait())

	row, err := a.QueryOne(ctx, `SELECT COUNT(*) AS n FROM items`)
	require.NoError(t, err)
	require.NotNil(t, row)
	// even transactions commit two rows each, odd ones roll back
	assert.Equal(t, transactions/2*2+rootInserts, row.Int("n"))

	result, err := a.Query(ctx, `SELECT id FROM items WHERE name = $1`, "tx")
	require.NoError(t, err)
	for _, r := range result.Rows {
		var tx, j int
		_, err := fmt.Sscanf(r.String("id"), "tx_%d_%d", &tx, &j)
		require.NoError(t, err)
		assert.Zero(t, tx%2, "rolled back transaction %d left a row", tx)
	}
}
