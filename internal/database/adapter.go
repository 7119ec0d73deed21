// Package database hides which SQL engine sits under the repositories.
//
// The same statements, written with $N placeholders, run against Postgres over
// the network or against an embedded SQLite file. The engine is decided once
// when the Adapter is built; repositories only ever see the Querier contract.
//
// Embedded calls are synchronous and serialised on a mutex owned by the
// Adapter, so nothing interleaves with an open embedded transaction. Networked
// calls go through the *sql.DB pool and may run concurrently.
package database

import (
	"database/sql"
	"sync"
)

type Adapter struct {
	session
	db *sql.DB
}

var _ Querier = (*Adapter)(nil)

// New builds an adapter for an already classified handle.
func New(h Handle) (*Adapter, error) {
	if h == nil {
		return nil, &ConfigurationError{Reason: "no driver handle supplied"}
	}
	if err := checkHandle(h); err != nil {
		return nil, err
	}

	db := h.sqlDB()
	switch h.(type) {
	case Networked:
		return &Adapter{
			session: session{dialect: DialectNetworked, run: db, mu: noLock{}},
			db:      db,
		}, nil
	case Embedded:
		return &Adapter{
			session: session{dialect: DialectEmbedded, run: db, mu: &sync.Mutex{}},
			db:      db,
		}, nil
	default:
		return nil, &ConfigurationError{Reason: "unknown handle variant"}
	}
}

// Open classifies conn with Detect and builds the adapter.
func Open(conn any) (*Adapter, error) {
	h, err := Detect(conn)
	if err != nil {
		return nil, err
	}
	return New(h)
}

func (a *Adapter) Dialect() Dialect {
	return a.dialect
}
