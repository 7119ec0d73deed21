package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// recorder logs every statement a fake Postgres connection receives.
type recorder struct {
	mu     sync.Mutex
	stmts  []string
	args   [][]driver.NamedValue
	failOn map[string]error
}

func (r *recorder) record(query string, args []driver.NamedValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, query)
	r.args = append(r.args, args)
	for prefix, err := range r.failOn {
		if strings.HasPrefix(query, prefix) {
			return err
		}
	}
	return nil
}

func (r *recorder) statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

type fakePostgresDriver struct{ rec *recorder }

func (d *fakePostgresDriver) Open(string) (driver.Conn, error) { return &fakeConn{rec: d.rec}, nil }

type mysteryDriver struct{}

func (mysteryDriver) Open(string) (driver.Conn, error) { return nil, errors.New("not supported") }

type fakeConnector struct{ drv driver.Driver }

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.drv.Open("") }
func (c fakeConnector) Driver() driver.Driver                      { return c.drv }

type fakeConn struct{ rec *recorder }

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("driver transactions not supported")
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.rec.record(query, args); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.rec.record(query, args); err != nil {
		return nil, err
	}
	if returningClause.MatchString(query) {
		return &fakeRows{cols: []string{"id"}, values: [][]driver.Value{{"wallet_1"}}}, nil
	}
	return &fakeRows{cols: []string{"n"}}, nil
}

type fakeRows struct {
	cols   []string
	values [][]driver.Value
	pos    int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}

func newFakePostgres(t *testing.T) (*sql.DB, *recorder) {
	t.Helper()
	rec := &recorder{failOn: map[string]error{}}
	db := sql.OpenDB(fakeConnector{drv: &fakePostgresDriver{rec: rec}})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db, rec
}
