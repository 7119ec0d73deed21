package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	bundialect "github.com/uptrace/bun/dialect"
)

type Dialect int

const (
	// DialectNetworked is Postgres reached over a connection. Statements use $N
	// placeholders and every call is a round trip.
	DialectNetworked Dialect = iota + 1
	// DialectEmbedded is a single-file SQLite database living in process.
	// Statements use ? placeholders and calls never leave the goroutine.
	DialectEmbedded
)

func (d Dialect) String() string {
	switch d {
	case DialectNetworked:
		return "networked"
	case DialectEmbedded:
		return "embedded"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Handle is the injected driver handle. Only Networked and Embedded implement it.
type Handle interface {
	dialect() Dialect
	sqlDB() *sql.DB
}

// Networked wraps a pool opened against Postgres (pgdriver, pq, pgx).
type Networked struct {
	DB *sql.DB
}

func (Networked) dialect() Dialect  { return DialectNetworked }
func (h Networked) sqlDB() *sql.DB { return h.DB }

// Embedded wraps a pool opened with the SQLite driver.
type Embedded struct {
	DB *sql.DB
}

func (Embedded) dialect() Dialect  { return DialectEmbedded }
func (h Embedded) sqlDB() *sql.DB { return h.DB }

// Detect classifies an opaque handle. A *bun.DB is classified by its bun
// dialect; a bare *sql.DB by the package its driver lives in.
func Detect(conn any) (Handle, error) {
	switch h := conn.(type) {
	case nil:
		return nil, &ConfigurationError{Reason: "no driver handle supplied"}
	case Networked:
		if err := checkHandle(h); err != nil {
			return nil, err
		}
		return h, nil
	case Embedded:
		if err := checkHandle(h); err != nil {
			return nil, err
		}
		return h, nil
	case *bun.DB:
		if h == nil || h.DB == nil {
			return nil, &ConfigurationError{Reason: "nil bun handle"}
		}
		switch h.Dialect().Name() {
		case bundialect.PG:
			return Networked{DB: h.DB}, nil
		case bundialect.SQLite:
			return Embedded{DB: h.DB}, nil
		}
		return detectSQLDB(h.DB)
	case *sql.DB:
		if h == nil {
			return nil, &ConfigurationError{Reason: "nil sql handle"}
		}
		return detectSQLDB(h)
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unsupported driver handle %T", conn)}
	}
}

// Driver packages per dialect, matched as import path prefixes.
var (
	networkedDrivers = []string{
		"github.com/uptrace/bun/driver/pgdriver",
		"github.com/jackc/pgx",
		"github.com/lib/pq",
	}
	embeddedDrivers = []string{
		"modernc.org/sqlite",
		"github.com/mattn/go-sqlite3",
		"github.com/glebarez/go-sqlite",
	}
)

func detectSQLDB(db *sql.DB) (Handle, error) {
	pkg := driverPackage(db.Driver())
	switch {
	case hasPrefix(pkg, embeddedDrivers):
		return Embedded{DB: db}, nil
	case hasPrefix(pkg, networkedDrivers):
		return Networked{DB: db}, nil
	}
	return nil, &ConfigurationError{Reason: fmt.Sprintf("unrecognised sql driver %T (package %q)", db.Driver(), pkg)}
}

func driverPackage(d driver.Driver) string {
	t := reflect.TypeOf(d)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}

func hasPrefix(pkg string, prefixes []string) bool {
	if pkg == "" {
		return false
	}
	for _, prefix := range prefixes {
		if pkg == prefix || strings.HasPrefix(pkg, prefix+"/") {
			return true
		}
	}
	return false
}

func checkHandle(h Handle) error {
	if h.sqlDB() == nil {
		return &ConfigurationError{Reason: fmt.Sprintf("%s handle has no *sql.DB", h.dialect())}
	}
	return nil
}
