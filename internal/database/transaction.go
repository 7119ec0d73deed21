package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"
)

// TxFunc runs inside a transaction. It must issue its statements through tx;
// going back to the Adapter from inside an embedded transaction blocks on the
// adapter mutex.
type TxFunc func(ctx context.Context, tx Querier) error

// Transaction runs fn atomically. Either every statement fn issued is
// committed or none is, on both engines.
func (a *Adapter) Transaction(ctx context.Context, fn TxFunc) error {
	switch a.dialect {
	case DialectNetworked:
		return a.networkedTx(ctx, fn)
	case DialectEmbedded:
		return a.embeddedTx(ctx, fn)
	default:
		return &ConfigurationError{Reason: "transaction on unknown dialect"}
	}
}

// InTransaction is Transaction for callbacks that produce a value.
func InTransaction[T any](ctx context.Context, a *Adapter, fn func(ctx context.Context, tx Querier) (T, error)) (T, error) {
	var out T
	err := a.Transaction(ctx, func(ctx context.Context, tx Querier) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// networkedTx pins one pooled connection and drives BEGIN/COMMIT/ROLLBACK on it.
func (a *Adapter) networkedTx(ctx context.Context, fn TxFunc) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return &TransactionError{Cause: a.fail(ctx, "BEGIN", nil, err)}
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN"); err != nil {
		return &TransactionError{Cause: a.fail(ctx, "BEGIN", nil, err)}
	}

	finished := false
	defer func() {
		if !finished {
			// fn panicked
			a.networkedRollback(ctx, conn)
		}
	}()

	tx := &session{dialect: DialectNetworked, run: conn, mu: noLock{}}
	if err := fn(ctx, tx); err != nil {
		finished = true
		if rbErr := a.networkedRollback(ctx, conn); rbErr != nil {
			return &TransactionError{Cause: err, RollbackErr: rbErr}
		}
		return err
	}

	finished = true
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		commitErr := a.fail(ctx, "COMMIT", nil, err)
		if rbErr := a.networkedRollback(ctx, conn); rbErr != nil {
			return &TransactionError{Cause: commitErr, RollbackErr: rbErr}
		}
		return &TransactionError{Cause: commitErr}
	}
	return nil
}

// networkedRollback rolls back even when ctx is already cancelled. A
// connection whose rollback failed is discarded rather than returned to the
// pool mid-transaction.
func (a *Adapter) networkedRollback(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
	if err == nil {
		return nil
	}

	logx.WithContext(ctx).Errorw("rollback failed", logx.Field("error", err.Error()))
	//nolint:errcheck
	conn.Raw(func(any) error { return driver.ErrBadConn })
	return err
}

// embeddedTx uses the engine's own transaction object and holds the adapter
// mutex until it is finished.
func (a *Adapter) embeddedTx(ctx context.Context, fn TxFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sqlTx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Cause: a.fail(ctx, "BEGIN", nil, err)}
	}

	finished := false
	defer func() {
		if !finished {
			//nolint:errcheck
			sqlTx.Rollback()
		}
	}()

	tx := &session{dialect: DialectEmbedded, run: sqlTx, mu: noLock{}}
	if err := fn(ctx, tx); err != nil {
		finished = true
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logx.WithContext(ctx).Errorw("rollback failed", logx.Field("error", rbErr.Error()))
			return &TransactionError{Cause: err, RollbackErr: rbErr}
		}
		return err
	}

	finished = true
	if err := sqlTx.Commit(); err != nil {
		return &TransactionError{Cause: a.fail(ctx, "COMMIT", nil, err)}
	}
	return nil
}
