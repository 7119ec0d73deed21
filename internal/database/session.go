package database

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
)

// Executor runs parameterless DDL and statement batches.
type Executor interface {
	Execute(ctx context.Context, query string) error
}

// Querier is the contract every repository is written against. Both the
// adapter and the transaction scope handed to Transaction satisfy it.
type Querier interface {
	Executor
	Query(ctx context.Context, query string, params ...any) (*QueryResult, error)
	QueryOne(ctx context.Context, query string, params ...any) (Row, error)
	Insert(ctx context.Context, query string, params ...any) (*ExecResult, error)
	Update(ctx context.Context, query string, params ...any) (int64, error)
}

// runner is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

var returningClause = regexp.MustCompile(`(?i)\breturning\b`)

// session executes statements on one runner in one dialect.
type session struct {
	dialect Dialect
	run     runner
	mu      sync.Locker
}

var _ Querier = (*session)(nil)

func (s *session) prepare(query string, params []any) (string, []any, error) {
	if s.dialect != DialectEmbedded {
		return query, params, nil
	}
	translated, order := TranslatePlaceholders(query)
	args, err := bindParams(order, params)
	if err != nil {
		return "", nil, err
	}
	return translated, args, nil
}

func (s *session) Query(ctx context.Context, query string, params ...any) (*QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(ctx, query, params)
}

func (s *session) query(ctx context.Context, query string, params []any) (*QueryResult, error) {
	stmt, args, err := s.prepare(query, params)
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}

	rows, err := s.run.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}

	return &QueryResult{Rows: result, RowCount: len(result)}, nil
}

func (s *session) QueryOne(ctx context.Context, query string, params ...any) (Row, error) {
	result, err := s.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, nil
	}
	return result.Rows[0], nil
}

func (s *session) Insert(ctx context.Context, query string, params ...any) (*ExecResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dialect == DialectNetworked && returningClause.MatchString(query) {
		result, err := s.query(ctx, query, params)
		if err != nil {
			return nil, err
		}
		res := &ExecResult{Changes: int64(result.RowCount)}
		if len(result.Rows) > 0 {
			res.InsertID = returnedID(result.Rows[0])
		}
		return res, nil
	}

	res, err := s.exec(ctx, query, params)
	if err != nil {
		return nil, err
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}
	out := &ExecResult{Changes: changes}

	if s.dialect == DialectEmbedded {
		if id, err := res.LastInsertId(); err == nil {
			out.InsertID = strconv.FormatInt(id, 10)
		}
	}
	return out, nil
}

func (s *session) Update(ctx context.Context, query string, params ...any) (int64, error) {
	res, err := s.Insert(ctx, query, params...)
	if err != nil {
		return 0, err
	}
	return res.Changes, nil
}

func (s *session) Execute(ctx context.Context, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.exec(ctx, query, nil)
	return err
}

func (s *session) exec(ctx context.Context, query string, params []any) (sql.Result, error) {
	stmt, args, err := s.prepare(query, params)
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}

	res, err := s.run.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.fail(ctx, query, params, err)
	}
	return res, nil
}

func (s *session) fail(ctx context.Context, query string, params []any, err error) error {
	logx.WithContext(ctx).Errorw("database statement failed",
		logx.Field("dialect", s.dialect.String()),
		logx.Field("sql", query),
		logx.Field("params", params),
		logx.Field("error", err.Error()),
	)
	return &QueryError{SQL: query, Params: params, Err: err}
}

func returnedID(row Row) string {
	if _, ok := row["id"]; ok {
		return row.String("id")
	}
	if len(row) == 1 {
		for col := range row {
			return row.String(col)
		}
	}
	return ""
}
