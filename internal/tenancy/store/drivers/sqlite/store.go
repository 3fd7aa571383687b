package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/sqlrepo"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	*sqlrepo.Store
	db *sql.DB
}

// NewStore opens dsn with the modernc driver. SQLite serialises writers, so
// the pool is held to a single connection; ":memory:" databases also rely
// on this to stay a single database.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Store: sqlrepo.New(db, Dialect{}),
		db:    db,
	}, nil
}

// Dialect uses '?' placeholders natively.
type Dialect struct{}

func (Dialect) Rebind(query string) string { return query }

func (Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
